package fitness

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

// Summary renders a human-readable report of one evaluated mutation against
// its baseline.
func Summary(result *datatype.MutationResult, baseline *Baseline, fitness float64) string {
	lines := []string{
		fmt.Sprintf("Mutation: %s", result.MutationID),
		fmt.Sprintf("Valid: %t", result.IsValid()),
		fmt.Sprintf("Fitness: %.4f", fitness),
		"",
		"Performance:",
		fmt.Sprintf("  Throughput: %.0f ops/sec (%.2f%% of baseline)",
			result.ThroughputOpsSec, result.ThroughputOpsSec/baseline.ThroughputOpsSec*100),
	}
	if result.P99LatencyUs > 0 {
		lines = append(lines, fmt.Sprintf("  P99 Latency: %.1f us (%.2f%% of baseline)",
			result.P99LatencyUs, result.P99LatencyUs/baseline.P99LatencyUs*100))
	} else {
		lines = append(lines, "  P99 Latency: N/A")
	}

	if result.Causal != nil {
		lines = append(lines,
			"",
			"Causal Profiling (Coz):",
			fmt.Sprintf("  Max impact potential: %.1f%%", result.Causal.MaxImpactPct()),
			fmt.Sprintf("  Bottleneck location: %s", result.Causal.MaxImpactLocation()),
		)
		if result.Causal.RuntimeNs > 0 {
			lines = append(lines, fmt.Sprintf("  Profile runtime: %s",
				units.HumanDuration(time.Duration(result.Causal.RuntimeNs))))
		}
	}

	if result.OffCpu != nil {
		topBlocker := "N/A"
		if len(result.OffCpu.TopBlockers) > 0 {
			topBlocker = result.OffCpu.TopBlockers[0].Function
		}
		lines = append(lines,
			"",
			"Blocked Time (bperf):",
			fmt.Sprintf("  Off-CPU ratio: %.1f%%", result.OffCpu.OffCpuRatio()*100),
			fmt.Sprintf("  Top blocker: %s", topBlocker),
		)
	}

	if result.HwCounter != nil && result.HwCounter.Cycles > 0 {
		lines = append(lines,
			"",
			"Hardware Counters (perf):",
			fmt.Sprintf("  IPC: %.2f", result.HwCounter.Ipc()),
			fmt.Sprintf("  Cache miss rate: %.1f%%", result.HwCounter.CacheMissPct()),
		)
	}

	return strings.Join(lines, "\n")
}
