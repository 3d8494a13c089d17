package datatype

import (
	"testing"
)

func TestHwCounterZeroDenominators(t *testing.T) {
	r := &HwCounterResult{Instructions: 1000, CacheMisses: 10, BranchMisses: 10}
	if r.Ipc() != 0.0 {
		t.Error("IPC with zero cycles should be 0")
	}
	if r.CacheMissPct() != 0.0 {
		t.Error("cache miss pct with zero references should be 0")
	}
	if r.BranchMissPct() != 0.0 {
		t.Error("branch miss pct with zero branches should be 0")
	}
}

func TestHwCounterDerived(t *testing.T) {
	r := &HwCounterResult{
		Cycles:          1000,
		Instructions:    800,
		CacheReferences: 200,
		CacheMisses:     10,
		Branches:        100,
		BranchMisses:    2,
	}
	if !almostEqual(r.Ipc(), 0.8) {
		t.Errorf("IPC %f, expected 0.8", r.Ipc())
	}
	if !almostEqual(r.CacheMissPct(), 5.0) {
		t.Errorf("cache miss pct %f, expected 5.0", r.CacheMissPct())
	}
	if !almostEqual(r.BranchMissPct(), 2.0) {
		t.Errorf("branch miss pct %f, expected 2.0", r.BranchMissPct())
	}
}

func TestTopHotspotsCap(t *testing.T) {
	r := &HwCounterResult{}
	for i := 0; i < 15; i++ {
		r.Hotspots = append(r.Hotspots, Hotspot{OverheadPct: float64(15 - i)})
	}
	if len(r.TopHotspots()) != N_TOP_HOTSPOTS {
		t.Errorf("expected %d hotspots, got %d", N_TOP_HOTSPOTS, len(r.TopHotspots()))
	}
	// exactly 15.0% is not above the threshold
	if r.HasSignificantHotspot() {
		t.Error("max overhead 15.0 should not be significant")
	}
}
