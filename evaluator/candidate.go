package evaluator

// Candidate is the fixed capability contract a candidate mutation must
// satisfy to be evaluated. Optional profiler signals are separate
// capabilities, type-asserted once when the candidate is loaded.
type Candidate interface {
	ID() string
	Compiled() bool
	TestsPassed() bool
	ThroughputOpsSec() float64
	P99LatencyUs() float64
}

// CausalProvider supplies raw causal profile text for the candidate run.
type CausalProvider interface {
	CausalProfile() string
}

// OffCpuProvider supplies raw bperf report text for the candidate run.
type OffCpuProvider interface {
	OffCpuReport() string
}

// HwCounterProvider supplies raw perf stat and perf report text for the
// candidate run. Either may be empty.
type HwCounterProvider interface {
	PerfStat() string
	PerfReport() string
}
