package causal

import (
	"fmt"
	"sort"
	"strings"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

const (
	HIGH_EFFICIENCY     = 0.8
	MODERATE_EFFICIENCY = 0.4
)

// GenerateMutationContext renders causal profiling results as guidance text
// for injection into a mutation prompt. Pure function of its argument.
func GenerateMutationContext(result *datatype.CausalResult, topN int) string {
	if !result.HasOptimizationOpportunity() {
		return "No significant optimization opportunities detected by causal profiling."
	}

	lines := []string{
		"## Causal Profiling Results (Coz)",
		"",
		"Coz virtually sped up individual source lines and measured the",
		"resulting change in end-to-end throughput. The following lines",
		"have the highest predicted global impact:",
		"",
	}

	opportunities := result.TopOpportunities()
	if len(opportunities) > topN {
		opportunities = opportunities[:topN]
	}
	for i, profile := range opportunities {
		label := ""
		if efficiency := profile.ImpactEfficiency(); efficiency > HIGH_EFFICIENCY {
			label = " [HIGH efficiency - true bottleneck]"
		} else if efficiency > MODERATE_EFFICIENCY {
			label = " [moderate efficiency]"
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** - %.1f%% predicted throughput gain%s",
			i+1, profile.Location, profile.PredictedImpactPct(), label))
		if curve := formatSpeedupCurve(profile); curve != "" {
			lines = append(lines, "   Speedup curve: "+curve)
		}
	}

	lines = append(lines,
		"",
		fmt.Sprintf("**Primary target:** `%s`", result.MaxImpactLocation()),
		fmt.Sprintf("**Predicted impact:** %.1f%% global throughput improvement", result.MaxImpactPct()),
		"",
		"Focus your mutation on reducing execution time at the primary target.",
		"Lines with HIGH efficiency are true bottlenecks - even small",
		"improvements there yield disproportionate global gains.",
	)

	return strings.Join(lines, "\n")
}

// formatSpeedupCurve renders the curve as speedup%->gain% pairs, e.g.
// "5%->2.0%, 10%->5.0%". Curves with fewer than two points render empty.
func formatSpeedupCurve(profile *datatype.LineProfile) string {
	if len(profile.Samples) < 2 {
		return ""
	}
	points := make([]datatype.SpeedupSample, len(profile.Samples))
	copy(points, profile.Samples)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].SpeedupFrac < points[j].SpeedupFrac
	})

	pairs := make([]string, 0, len(points))
	for _, s := range points {
		if s.SpeedupFrac <= 0 {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%.0f%%->%.1f%%", s.SpeedupFrac*100, s.ThroughputDelta*100))
	}
	return strings.Join(pairs, ", ")
}
