package hwcounter

import (
	"fmt"
	"strings"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

// GenerateMutationContext renders hardware counter analysis and CPU hotspots
// as guidance text for injection into a mutation prompt. Pure function of
// its argument.
func GenerateMutationContext(result *datatype.HwCounterResult, topN int) string {
	lines := []string{
		"## CPU Profiling Results (perf)",
		"",
	}

	if result.Cycles > 0 {
		lines = append(lines, "### Hardware Counters")

		ipc := result.Ipc()
		lines = append(lines, fmt.Sprintf("- IPC: %.2f", ipc))
		switch {
		case ipc < 0.5:
			lines = append(lines, "  -> Very low IPC. Execution is severely memory-bound or stalled.")
		case ipc < 1.0:
			lines = append(lines, "  -> Low IPC. Significant memory-latency stalls.")
		case ipc < 2.0:
			lines = append(lines, "  -> Moderate IPC. Some memory stalls present.")
		default:
			lines = append(lines, "  -> High IPC. Execution is compute-bound.")
		}

		cacheMissPct := result.CacheMissPct()
		lines = append(lines, fmt.Sprintf("- Cache miss rate: %.1f%%", cacheMissPct))
		if cacheMissPct > 10 {
			lines = append(lines, "  -> HIGH cache miss rate. Consider tiling, blocking, or data-layout changes.")
		} else if cacheMissPct > 3 {
			lines = append(lines, "  -> Moderate cache miss rate. Data layout improvements may help.")
		}

		branchMissPct := result.BranchMissPct()
		lines = append(lines, fmt.Sprintf("- Branch misprediction rate: %.1f%%", branchMissPct))
		if branchMissPct > 5 {
			lines = append(lines, "  -> High branch misprediction. Consider branchless algorithms or lookup tables.")
		}

		if result.ContextSwitches > 100 {
			lines = append(lines, fmt.Sprintf("- Context switches: %d", result.ContextSwitches))
			lines = append(lines, "  -> High context switches suggest lock contention or I/O blocking.")
		}

		lines = append(lines, fmt.Sprintf("- Wall time: %.2fs (user %.2fs, sys %.2fs)",
			result.ElapsedSeconds, result.UserSeconds, result.SysSeconds))
		if result.ElapsedSeconds > 0 && result.SysSeconds/result.ElapsedSeconds > 0.2 {
			lines = append(lines, "  -> High system time ratio. Syscall overhead or I/O may be significant.")
		}
		lines = append(lines, "")
	}

	if len(result.Hotspots) > 0 {
		lines = append(lines, "### CPU Hotspots (top functions by sample overhead)")
		hotspots := result.TopHotspots()
		if len(hotspots) > topN {
			hotspots = hotspots[:topN]
		}
		for i, h := range hotspots {
			lines = append(lines, fmt.Sprintf("%d. **%s** - %.1f%% CPU (%s)",
				i+1, h.Symbol, h.OverheadPct, h.SharedObject))
		}
		lines = append(lines, "")
		if result.HasSignificantHotspot() {
			top := result.TopHotspots()[0]
			lines = append(lines, fmt.Sprintf(
				"**Primary target:** `%s` accounts for %.1f%% of CPU time. Focus optimizations here.",
				top.Symbol, top.OverheadPct))
		} else {
			lines = append(lines,
				"CPU time is spread across many functions. Consider algorithmic",
				"improvements or reducing overall work rather than micro-optimizing one function.")
		}
	}

	return strings.Join(lines, "\n")
}
