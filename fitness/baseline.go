package fitness

// Baseline holds the reference measurements of the unmodified program, taken
// from one initial run and threaded explicitly into scoring. Callers that
// parallelize evaluations must give each one its own Baseline instance; the
// scoring functions never mutate it.
type Baseline struct {
	ThroughputOpsSec   float64 `yaml:"throughput-ops-sec"`
	P99LatencyUs       float64 `yaml:"p99-latency-us"`
	OffCpuRatio        float64 `yaml:"off-cpu-ratio"`
	CausalMaxImpactPct float64 `yaml:"causal-max-impact-pct"`
}

const (
	DefaultBaselineThroughputOpsSec   = 100000.0
	DefaultBaselineP99LatencyUs       = 500.0
	DefaultBaselineOffCpuRatio        = 0.25
	DefaultBaselineCausalMaxImpactPct = 15.0
)

func DefaultBaseline() *Baseline {
	return &Baseline{
		ThroughputOpsSec:   DefaultBaselineThroughputOpsSec,
		P99LatencyUs:       DefaultBaselineP99LatencyUs,
		OffCpuRatio:        DefaultBaselineOffCpuRatio,
		CausalMaxImpactPct: DefaultBaselineCausalMaxImpactPct,
	}
}
