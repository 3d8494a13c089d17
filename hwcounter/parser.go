package hwcounter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

var log = logging.MustGetLogger("hwcounter")

// perf stat lines carry a comma-grouped value, a counter name and an
// optional comment:
//
//	12,345,678,901      cycles                    #    3.123 GHz
//
// perf report --stdio lines carry a percentage, command, shared object and
// a [.] or [k] tagged symbol:
//
//	25.32%  db_bench  librocksdb.so  [.] rocksdb::DBImpl::WriteImpl
var (
	counterRegex = regexp.MustCompile(`^([\d,]+)\s+([\w-]+(?::[\w-]+)?)\s*(?:#\s*(.*))?$`)
	elapsedRegex = regexp.MustCompile(`([\d.]+)\s+seconds time elapsed`)
	userRegex    = regexp.MustCompile(`([\d.]+)\s+seconds user`)
	sysRegex     = regexp.MustCompile(`([\d.]+)\s+seconds sys`)
	hotspotRegex = regexp.MustCompile(`^([\d.]+)%\s+(\S+)\s+(\S+)\s+\[.\]\s+(.+)$`)
)

// Known counter-name fragments in match order. The first fragment contained
// in a parsed counter name claims it, so more specific names must come
// before their prefixes.
var counterTable = []struct {
	fragment string
	assign   func(*datatype.HwCounterResult, int64)
}{
	{"cycles", func(r *datatype.HwCounterResult, v int64) { r.Cycles = v }},
	{"instructions", func(r *datatype.HwCounterResult, v int64) { r.Instructions = v }},
	{"cache-references", func(r *datatype.HwCounterResult, v int64) { r.CacheReferences = v }},
	{"cache-misses", func(r *datatype.HwCounterResult, v int64) { r.CacheMisses = v }},
	{"branches", func(r *datatype.HwCounterResult, v int64) { r.Branches = v }},
	{"branch-misses", func(r *datatype.HwCounterResult, v int64) { r.BranchMisses = v }},
	{"context-switches", func(r *datatype.HwCounterResult, v int64) { r.ContextSwitches = v }},
	{"cpu-migrations", func(r *datatype.HwCounterResult, v int64) { r.CpuMigrations = v }},
	{"page-faults", func(r *datatype.HwCounterResult, v int64) { r.PageFaults = v }},
}

// Parse combines perf stat and perf report text into one result. Either
// argument may be empty.
func Parse(statText, reportText string) *datatype.HwCounterResult {
	result := ParseStat(statText)
	result.Hotspots = ParseReport(reportText)
	return result
}

// ParseStat extracts counter values and the three optional timing sentences
// from perf stat output. Unrecognized lines are skipped.
func ParseStat(text string) *datatype.HwCounterResult {
	result := &datatype.HwCounterResult{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "Performance") {
			continue
		}

		if m := counterRegex.FindStringSubmatch(line); m != nil {
			value, err := parseCounterValue(m[1])
			if err != nil {
				log.Debugf("bad counter value %q: %v", m[1], err)
				continue
			}
			name := m[2]
			result.AllCounters = append(result.AllCounters, datatype.Counter{
				Name:    name,
				Value:   value,
				Comment: m[3],
			})
			for _, entry := range counterTable {
				if strings.Contains(name, entry.fragment) {
					entry.assign(result, value)
					break
				}
			}
		}

		// 三条计时行相互独立，缺失时保持为0
		if m := elapsedRegex.FindStringSubmatch(line); m != nil {
			result.ElapsedSeconds, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := userRegex.FindStringSubmatch(line); m != nil {
			result.UserSeconds, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := sysRegex.FindStringSubmatch(line); m != nil {
			result.SysSeconds, _ = strconv.ParseFloat(m[1], 64)
		}
	}

	return result
}

// ParseReport extracts sampled-symbol hotspots from perf report --stdio
// output, sorted by overhead descending.
func ParseReport(text string) []datatype.Hotspot {
	hotspots := make([]datatype.Hotspot, 0, 16)
	for _, line := range strings.Split(text, "\n") {
		m := hotspotRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		hotspots = append(hotspots, datatype.Hotspot{
			OverheadPct:  pct,
			Command:      m[2],
			SharedObject: m[3],
			Symbol:       strings.TrimSpace(m[4]),
		})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].OverheadPct > hotspots[j].OverheadPct
	})
	return hotspots
}

// parseCounterValue strips thousands separators, e.g. "12,345,678" -> 12345678.
func parseCounterValue(raw string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
}
