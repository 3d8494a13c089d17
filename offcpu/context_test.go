package offcpu

import (
	"strings"
	"testing"
)

func TestContextNoBlocking(t *testing.T) {
	result := Parse("# Total samples: 10000\n# Off-CPU samples: 1000\n10.00%  [kernel]  schedule\n")
	context := GenerateMutationContext(result, 3)
	if !strings.Contains(context, "No significant off-CPU blocking") {
		t.Errorf("expected the no-blocking message, got: %s", context)
	}
}

func TestContextRendersBlockers(t *testing.T) {
	result := Parse(mockReport)
	context := GenerateMutationContext(result, 2)

	if !strings.Contains(context, "**Off-CPU ratio:** 35.0% (3500/10000 samples)") {
		t.Errorf("context missing ratio line: %s", context)
	}
	if !strings.Contains(context, "**schedule** - 35.0% of blocked time") {
		t.Errorf("context missing top blocker: %s", context)
	}
	// topN=2 cuts the third site
	if strings.Contains(context, "DBImpl") {
		t.Error("topN=2 should not render the third site")
	}
}
