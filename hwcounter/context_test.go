package hwcounter

import (
	"strings"
	"testing"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

func TestContextIpcBands(t *testing.T) {
	result := &datatype.HwCounterResult{Cycles: 1000, Instructions: 400}
	context := GenerateMutationContext(result, 5)
	if !strings.Contains(context, "Very low IPC") {
		t.Errorf("IPC 0.4 should read as very low: %s", context)
	}

	result.Instructions = 2500
	context = GenerateMutationContext(result, 5)
	if !strings.Contains(context, "High IPC") {
		t.Errorf("IPC 2.5 should read as high: %s", context)
	}
}

func TestContextCacheAndBranchAdvice(t *testing.T) {
	result := &datatype.HwCounterResult{
		Cycles:          1000,
		Instructions:    1500,
		CacheReferences: 1000,
		CacheMisses:     120,
		Branches:        1000,
		BranchMisses:    80,
	}
	context := GenerateMutationContext(result, 5)
	if !strings.Contains(context, "HIGH cache miss rate") {
		t.Errorf("12%% misses should trigger the cache advice: %s", context)
	}
	if !strings.Contains(context, "branchless algorithms") {
		t.Errorf("8%% branch misses should trigger the branch advice: %s", context)
	}

	result.CacheMisses = 50
	context = GenerateMutationContext(result, 5)
	if !strings.Contains(context, "Moderate cache miss rate") {
		t.Errorf("5%% misses should read as moderate: %s", context)
	}
}

func TestContextSysTimeAdvice(t *testing.T) {
	result := &datatype.HwCounterResult{
		Cycles:         1000,
		Instructions:   1500,
		ElapsedSeconds: 10,
		SysSeconds:     3,
	}
	context := GenerateMutationContext(result, 5)
	if !strings.Contains(context, "High system time ratio") {
		t.Errorf("30%% sys time should trigger the syscall advice: %s", context)
	}
}

func TestContextHotspotSection(t *testing.T) {
	result := Parse("", mockReportText)
	context := GenerateMutationContext(result, 3)
	if !strings.Contains(context, "**Primary target:** `rocksdb::DBImpl::WriteImpl`") {
		t.Errorf("25.32%% hotspot should be the primary target: %s", context)
	}
	// topN=3 cuts the fifth hotspot
	if strings.Contains(context, "__memmove_avx_unaligned") {
		t.Error("topN=3 should not render the fifth hotspot")
	}

	spread := &datatype.HwCounterResult{
		Hotspots: []datatype.Hotspot{
			{OverheadPct: 8.0, Symbol: "a"},
			{OverheadPct: 7.0, Symbol: "b"},
		},
	}
	context = GenerateMutationContext(spread, 3)
	if !strings.Contains(context, "spread across many functions") {
		t.Errorf("no dominant hotspot should suggest algorithmic work: %s", context)
	}
}

func TestContextEmptyResult(t *testing.T) {
	context := GenerateMutationContext(&datatype.HwCounterResult{}, 5)
	if strings.Contains(context, "Hardware Counters") || strings.Contains(context, "Hotspots") {
		t.Errorf("empty result should render neither section: %s", context)
	}
}
