package datatype

const (
	OFF_CPU_BLOCKING_THRESHOLD = 0.20

	N_TOP_BLOCKING_SITES = 10
)

// BlockingSite is one off-CPU call site. Samples is derived from the site
// percentage and the total sample count at parse time.
type BlockingSite struct {
	Function   string
	Percentage float64
	Samples    int64
}

// OffCpuResult aggregates one bperf run. TopBlockers are sorted by
// percentage descending and capped to the top 10.
type OffCpuResult struct {
	TotalSamples  int64
	OffCpuSamples int64
	TopBlockers   []BlockingSite
}

func (r *OffCpuResult) OffCpuRatio() float64 {
	if r.TotalSamples == 0 {
		return 0.0
	}
	return float64(r.OffCpuSamples) / float64(r.TotalSamples)
}

func (r *OffCpuResult) HasSignificantBlocking() bool {
	return r.OffCpuRatio() > OFF_CPU_BLOCKING_THRESHOLD
}
