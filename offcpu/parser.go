package offcpu

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

var log = logging.MustGetLogger("offcpu")

// bperf report format:
//
//	# Total samples: 10000
//	# Off-CPU samples: 2500
//
//	25.00%  [kernel]  schedule
//	15.00%  libpthread  __pthread_mutex_lock
//
// The site pattern is best-effort: it can also match nested stack-frame
// percentage lines in call-graph output, so sub-frames of one blocking
// event may each produce a site. Intentional, the report grammar does not
// distinguish them.
var (
	totalRegex  = regexp.MustCompile(`Total samples:\s*(\d+)`)
	offCpuRegex = regexp.MustCompile(`Off-CPU samples:\s*(\d+)`)
	siteRegex   = regexp.MustCompile(`(\d+\.?\d*)%\s+\[?\w+\]?\s+(\w+)`)
)

// Parse extracts off-CPU totals and blocking call sites from bperf report
// text. Never fails: missing headers default to 0 and a zero total yields a
// zero ratio and zero derived sample counts.
func Parse(text string) *datatype.OffCpuResult {
	result := &datatype.OffCpuResult{}

	if m := totalRegex.FindStringSubmatch(text); m != nil {
		result.TotalSamples, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := offCpuRegex.FindStringSubmatch(text); m != nil {
		result.OffCpuSamples, _ = strconv.ParseInt(m[1], 10, 64)
	}

	sites := make([]datatype.BlockingSite, 0, 16)
	for _, m := range siteRegex.FindAllStringSubmatch(text, -1) {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		samples := int64(0)
		if result.TotalSamples > 0 {
			samples = int64(math.Round(float64(result.TotalSamples) * pct / 100))
		}
		sites = append(sites, datatype.BlockingSite{
			Function:   m[2],
			Percentage: pct,
			Samples:    samples,
		})
	}

	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Percentage > sites[j].Percentage
	})
	if len(sites) > datatype.N_TOP_BLOCKING_SITES {
		sites = sites[:datatype.N_TOP_BLOCKING_SITES]
	}
	result.TopBlockers = sites

	log.Debugf("parsed off-CPU report: %d/%d samples, %d sites",
		result.OffCpuSamples, result.TotalSamples, len(sites))
	return result
}
