package datatype

import (
	"fmt"
)

const (
	HOTSPOT_OVERHEAD_THRESHOLD_PCT = 15.0

	N_TOP_HOTSPOTS = 10
)

// Counter is one raw hardware counter reading from perf stat.
type Counter struct {
	Name    string
	Value   int64
	Comment string
}

// Hotspot is one sampled symbol from perf report.
type Hotspot struct {
	OverheadPct  float64
	Command      string
	SharedObject string
	Symbol       string
}

func (h *Hotspot) Location() string {
	return h.SharedObject + ":" + h.Symbol
}

func (h *Hotspot) String() string {
	return fmt.Sprintf("%s (%.1f%%)", h.Symbol, h.OverheadPct)
}

// HwCounterResult combines perf stat counters with perf report hotspots.
// Recognized counters land in the fixed fields, every parsed counter is also
// retained in AllCounters. Hotspots are sorted by overhead descending.
type HwCounterResult struct {
	Cycles          int64
	Instructions    int64
	CacheReferences int64
	CacheMisses     int64
	Branches        int64
	BranchMisses    int64
	ContextSwitches int64
	CpuMigrations   int64
	PageFaults      int64

	ElapsedSeconds float64
	UserSeconds    float64
	SysSeconds     float64

	AllCounters []Counter
	Hotspots    []Hotspot
}

// Ipc is instructions retired per cycle, 0 when cycles were not measured.
func (r *HwCounterResult) Ipc() float64 {
	if r.Cycles == 0 {
		return 0.0
	}
	return float64(r.Instructions) / float64(r.Cycles)
}

func (r *HwCounterResult) CacheMissPct() float64 {
	if r.CacheReferences == 0 {
		return 0.0
	}
	return float64(r.CacheMisses) / float64(r.CacheReferences) * 100
}

func (r *HwCounterResult) BranchMissPct() float64 {
	if r.Branches == 0 {
		return 0.0
	}
	return float64(r.BranchMisses) / float64(r.Branches) * 100
}

// TopHotspots returns up to 10 hotspots, highest overhead first.
func (r *HwCounterResult) TopHotspots() []Hotspot {
	if len(r.Hotspots) <= N_TOP_HOTSPOTS {
		return r.Hotspots
	}
	return r.Hotspots[:N_TOP_HOTSPOTS]
}

func (r *HwCounterResult) HasSignificantHotspot() bool {
	for _, h := range r.Hotspots {
		if h.OverheadPct > HOTSPOT_OVERHEAD_THRESHOLD_PCT {
			return true
		}
	}
	return false
}
