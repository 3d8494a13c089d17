package datatype

// MutationResult is the complete measurement of one evaluated candidate
// mutation. The profiler results are optional, fitness scoring degrades
// gracefully when they are absent.
type MutationResult struct {
	MutationID  string
	Compiled    bool
	TestsPassed bool

	ThroughputOpsSec float64
	P99LatencyUs     float64

	Causal    *CausalResult
	OffCpu    *OffCpuResult
	HwCounter *HwCounterResult
}

// IsValid reports whether the mutation compiled and passed tests. Invalid
// mutations always score exactly 0.
func (r *MutationResult) IsValid() bool {
	return r.Compiled && r.TestsPassed
}
