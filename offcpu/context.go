package offcpu

import (
	"fmt"
	"strings"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

// GenerateMutationContext renders off-CPU analysis as guidance text for
// injection into a mutation prompt. Pure function of its argument.
func GenerateMutationContext(result *datatype.OffCpuResult, topN int) string {
	if !result.HasSignificantBlocking() {
		return "No significant off-CPU blocking detected by bperf."
	}

	lines := []string{
		"## Off-CPU Analysis (bperf)",
		"",
		"The program spends significant time blocked (off-CPU).",
		"Reducing contention at these call sites will improve throughput:",
		"",
		fmt.Sprintf("**Off-CPU ratio:** %.1f%% (%d/%d samples)",
			result.OffCpuRatio()*100, result.OffCpuSamples, result.TotalSamples),
		"",
	}

	blockers := result.TopBlockers
	if len(blockers) > topN {
		blockers = blockers[:topN]
	}
	for i, site := range blockers {
		lines = append(lines, fmt.Sprintf("%d. **%s** - %.1f%% of blocked time",
			i+1, site.Function, site.Percentage))
	}

	lines = append(lines,
		"",
		"Focus your mutation on reducing lock contention and blocking at the top sites.",
	)

	return strings.Join(lines, "\n")
}
