package datatype

import (
	"fmt"
)

const (
	// 任一行的预测影响超过该百分比才认为存在优化空间
	CAUSAL_IMPACT_THRESHOLD_PCT = 2.0

	N_TOP_OPPORTUNITIES = 5
)

// SpeedupSample is one virtual speedup experiment for a source line.
// Immutable once parsed.
type SpeedupSample struct {
	SpeedupFrac     float64 // virtual speedup applied, 0.0 to 1.0
	ThroughputDelta float64 // measured fractional change of the progress metric
	DurationNs      int64
	SelectedSamples int64
}

// LineProfile is the speedup curve of one source line. Samples keep the
// order they were discovered in.
type LineProfile struct {
	Location Location
	Samples  []SpeedupSample
}

func (p *LineProfile) MaxThroughputDelta() float64 {
	max := 0.0
	for i, s := range p.Samples {
		if i == 0 || s.ThroughputDelta > max {
			max = s.ThroughputDelta
		}
	}
	return max
}

// PredictedImpactPct is the throughput delta observed at the highest virtual
// speedup tested, as a percentage. That trial upper-bounds the realizable
// gain.
func (p *LineProfile) PredictedImpactPct() float64 {
	if len(p.Samples) == 0 {
		return 0.0
	}
	best := p.Samples[0]
	for _, s := range p.Samples[1:] {
		if s.SpeedupFrac > best.SpeedupFrac {
			best = s
		}
	}
	return best.ThroughputDelta * 100
}

// ImpactEfficiency is the throughput gain per unit of virtual speedup, taken
// from the sample with the best throughput delta. Near 1 means a genuine
// bottleneck, low values mean incidental correlation. Note the sample used
// here may differ from the one PredictedImpactPct uses.
func (p *LineProfile) ImpactEfficiency() float64 {
	if len(p.Samples) == 0 {
		return 0.0
	}
	best := p.Samples[0]
	for _, s := range p.Samples[1:] {
		if s.ThroughputDelta > best.ThroughputDelta {
			best = s
		}
	}
	if best.SpeedupFrac == 0 {
		return 0.0
	}
	return best.ThroughputDelta / best.SpeedupFrac
}

func (p *LineProfile) String() string {
	return fmt.Sprintf("%s (%.1f%% predicted impact)", p.Location, p.PredictedImpactPct())
}

// CausalResult aggregates one causal profiling run. LineProfiles are sorted
// by predicted impact descending, one entry per distinct location.
type CausalResult struct {
	LineProfiles     []*LineProfile
	ThroughputPoints []string
	LatencyPoints    []string
	StartupTimeNs    int64
	RuntimeNs        int64
}

func (r *CausalResult) MaxImpactPct() float64 {
	max := 0.0
	for i, p := range r.LineProfiles {
		if pct := p.PredictedImpactPct(); i == 0 || pct > max {
			max = pct
		}
	}
	return max
}

// MaxImpactLocation returns "N/A" when no lines were profiled. Ties go to
// the earlier profile in sorted order.
func (r *CausalResult) MaxImpactLocation() string {
	if len(r.LineProfiles) == 0 {
		return "N/A"
	}
	best := r.LineProfiles[0]
	for _, p := range r.LineProfiles[1:] {
		if p.PredictedImpactPct() > best.PredictedImpactPct() {
			best = p
		}
	}
	return best.Location.String()
}

func (r *CausalResult) HasOptimizationOpportunity() bool {
	return r.MaxImpactPct() > CAUSAL_IMPACT_THRESHOLD_PCT
}

// TopOpportunities returns up to 5 profiles ranked by predicted impact.
// LineProfiles are already sorted by the parser.
func (r *CausalResult) TopOpportunities() []*LineProfile {
	if len(r.LineProfiles) <= N_TOP_OPPORTUNITIES {
		return r.LineProfiles
	}
	return r.LineProfiles[:N_TOP_OPPORTUNITIES]
}
