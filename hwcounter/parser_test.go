package hwcounter

import (
	"math"
	"testing"
)

const mockStat = " Performance counter stats for './db_bench':\n" +
	"\n" +
	"     12,345,678,901      cycles                    #    3.123 GHz\n" +
	"      9,876,543,210      instructions              #    0.80  insn per cycle\n" +
	"         45,678,901      cache-references          #   11.543 M/sec\n" +
	"          2,345,678      cache-misses              #    5.14 % of all cache refs\n" +
	"        567,890,123      branches                  #  143.508 M/sec\n" +
	"         12,345,678      branch-misses             #    2.17 % of all branches\n" +
	"             12,345      context-switches          #    3.121 K/sec\n" +
	"                 45      cpu-migrations            #   11.380 /sec\n" +
	"              5,678      page-faults               #    1.434 K/sec\n" +
	"\n" +
	"       3.952432890 seconds time elapsed\n" +
	"       3.850271000 seconds user\n" +
	"       0.100352000 seconds sys\n"

const mockReportText = "# Overhead  Command   Shared Object       Symbol\n" +
	"# ........  ........  ..................  .........\n" +
	"#\n" +
	"    25.32%  db_bench  librocksdb.so       [.] rocksdb::DBImpl::WriteImpl\n" +
	"    12.45%  db_bench  librocksdb.so       [.] rocksdb::WriteBatchInternal::Append\n" +
	"     8.67%  db_bench  [kernel.kallsyms]   [k] native_queued_spin_lock_slowpath\n" +
	"     6.23%  db_bench  librocksdb.so       [.] rocksdb::InlineSkipList<>::Insert\n" +
	"     4.15%  db_bench  libc.so.6           [.] __memmove_avx_unaligned\n"

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseStatCounters(t *testing.T) {
	result := ParseStat(mockStat)

	if result.Cycles != 12345678901 {
		t.Errorf("cycles %d", result.Cycles)
	}
	if result.Instructions != 9876543210 {
		t.Errorf("instructions %d", result.Instructions)
	}
	if result.CacheReferences != 45678901 {
		t.Errorf("cache references %d", result.CacheReferences)
	}
	if result.CacheMisses != 2345678 {
		t.Errorf("cache misses %d", result.CacheMisses)
	}
	if result.Branches != 567890123 {
		t.Errorf("branches %d", result.Branches)
	}
	if result.BranchMisses != 12345678 {
		t.Errorf("branch misses %d", result.BranchMisses)
	}
	if result.ContextSwitches != 12345 {
		t.Errorf("context switches %d", result.ContextSwitches)
	}
	if result.CpuMigrations != 45 {
		t.Errorf("cpu migrations %d", result.CpuMigrations)
	}
	if result.PageFaults != 5678 {
		t.Errorf("page faults %d", result.PageFaults)
	}
	if len(result.AllCounters) != 9 {
		t.Errorf("expected 9 parsed counters, got %d", len(result.AllCounters))
	}

	if math.Abs(result.Ipc()-0.8) > 0.001 {
		t.Errorf("IPC %f, expected about 0.8", result.Ipc())
	}
	if math.Abs(result.CacheMissPct()-5.14) > 0.01 {
		t.Errorf("cache miss pct %f, expected about 5.14", result.CacheMissPct())
	}
}

func TestParseStatTimings(t *testing.T) {
	result := ParseStat(mockStat)
	if !almostEqual(result.ElapsedSeconds, 3.952432890) {
		t.Errorf("elapsed %f", result.ElapsedSeconds)
	}
	if !almostEqual(result.UserSeconds, 3.850271000) {
		t.Errorf("user %f", result.UserSeconds)
	}
	if !almostEqual(result.SysSeconds, 0.100352000) {
		t.Errorf("sys %f", result.SysSeconds)
	}
}

func TestParseStatTimingsOptional(t *testing.T) {
	result := ParseStat("       3.95 seconds time elapsed\n")
	if !almostEqual(result.ElapsedSeconds, 3.95) {
		t.Errorf("elapsed %f", result.ElapsedSeconds)
	}
	if result.UserSeconds != 0 || result.SysSeconds != 0 {
		t.Error("missing timing sentences should stay 0")
	}
}

func TestParseStatUnrecognizedCounter(t *testing.T) {
	result := ParseStat("     1,234      stalled-cycles-frontend   #  10.0%\n" +
		"     5,678      uops_retired\n")
	// "stalled-cycles-frontend" contains "cycles" and claims the fixed field
	if result.Cycles != 1234 {
		t.Errorf("cycles %d, expected fragment match to assign 1234", result.Cycles)
	}
	// both land in the overflow list either way
	if len(result.AllCounters) != 2 {
		t.Fatalf("expected 2 counters retained, got %d", len(result.AllCounters))
	}
	if result.AllCounters[1].Name != "uops_retired" || result.AllCounters[1].Value != 5678 {
		t.Errorf("overflow counter %+v", result.AllCounters[1])
	}
}

func TestParseReportHotspots(t *testing.T) {
	hotspots := ParseReport(mockReportText)
	if len(hotspots) != 5 {
		t.Fatalf("expected 5 hotspots, got %d", len(hotspots))
	}
	top := hotspots[0]
	if !almostEqual(top.OverheadPct, 25.32) {
		t.Errorf("top overhead %f", top.OverheadPct)
	}
	if top.Command != "db_bench" || top.SharedObject != "librocksdb.so" {
		t.Errorf("top hotspot %+v", top)
	}
	if top.Symbol != "rocksdb::DBImpl::WriteImpl" {
		t.Errorf("top symbol %q", top.Symbol)
	}
	// kernel symbols ([k]) parse the same as user symbols ([.])
	found := false
	for _, h := range hotspots {
		if h.Symbol == "native_queued_spin_lock_slowpath" {
			found = true
		}
	}
	if !found {
		t.Error("kernel symbol line should parse")
	}
}

func TestParseCombined(t *testing.T) {
	result := Parse(mockStat, mockReportText)
	if result.Cycles == 0 || len(result.Hotspots) == 0 {
		t.Error("combined parse should fill both halves")
	}
	if !result.HasSignificantHotspot() {
		t.Error("25.32%% hotspot should be significant")
	}
}

func TestParseEmptyInputs(t *testing.T) {
	result := Parse("", "")
	if result.Ipc() != 0.0 || result.CacheMissPct() != 0.0 || result.BranchMissPct() != 0.0 {
		t.Error("empty inputs should degrade all ratios to 0")
	}
	if len(result.Hotspots) != 0 {
		t.Error("empty report should produce no hotspots")
	}
}
