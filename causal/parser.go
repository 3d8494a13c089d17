package causal

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

var log = logging.MustGetLogger("causal")

// Coz/BCOZ profile lines are tab- or space-separated key=value records
// tagged by their leading token:
//
//	startup	time=<ns>
//	runtime	time=<ns>
//	samples	selected=<file>:<line>	speedup=<frac>	duration=<ns>	selected-samples=<n>	throughput-delta=<frac>
//	experiment	selected=<file>:<line>	speedup=<frac>	duration=<ns>
//	throughput-point	name=<id>	delta=<frac>
//	latency-point	name=<id>	type=<begin|end>
//
// "samples" is the newer record tag, "experiment" the older one; both carry
// the same sample payload, with selected-samples and throughput-delta
// optional.
var (
	timeRegex            = regexp.MustCompile(`time=(\d+)`)
	selectedRegex        = regexp.MustCompile(`selected=([^:\s]+):(\d+)`)
	speedupRegex         = regexp.MustCompile(`speedup=([\d.]+)`)
	durationRegex        = regexp.MustCompile(`duration=(\d+)`)
	selectedSamplesRegex = regexp.MustCompile(`selected-samples=(\d+)`)
	throughputDeltaRegex = regexp.MustCompile(`throughput-delta=([-\d.]+)`)
	nameRegex            = regexp.MustCompile(`name=(\S+)`)
)

// Parse builds per-line speedup curves from causal profile text. Malformed
// or unrecognized lines are skipped, never fatal.
func Parse(text string) *datatype.CausalResult {
	result := &datatype.CausalResult{}

	profiles := make(map[datatype.Location]*datatype.LineProfile)
	order := make([]datatype.Location, 0, 16)
	skipped := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tag := line
		if index := strings.IndexAny(line, " \t"); index >= 0 {
			tag = line[:index]
		}

		switch tag {
		case "startup":
			if m := timeRegex.FindStringSubmatch(line); m != nil {
				result.StartupTimeNs, _ = strconv.ParseInt(m[1], 10, 64)
			}
		case "runtime":
			if m := timeRegex.FindStringSubmatch(line); m != nil {
				result.RuntimeNs, _ = strconv.ParseInt(m[1], 10, 64)
			}
		case "samples", "experiment":
			sample, location, ok := parseSample(line)
			if !ok {
				skipped++
				continue
			}
			profile := profiles[location]
			if profile == nil {
				profile = &datatype.LineProfile{Location: location}
				profiles[location] = profile
				order = append(order, location)
			}
			profile.Samples = append(profile.Samples, sample)
		case "throughput-point":
			if m := nameRegex.FindStringSubmatch(line); m != nil {
				result.ThroughputPoints = append(result.ThroughputPoints, m[1])
			}
		case "latency-point":
			if m := nameRegex.FindStringSubmatch(line); m != nil {
				result.LatencyPoints = append(result.LatencyPoints, m[1])
			}
		default:
			skipped++
		}
	}

	result.LineProfiles = make([]*datatype.LineProfile, 0, len(order))
	for _, location := range order {
		result.LineProfiles = append(result.LineProfiles, profiles[location])
	}
	// 按预测影响降序排序，相同时保持发现顺序
	sort.SliceStable(result.LineProfiles, func(i, j int) bool {
		return result.LineProfiles[i].PredictedImpactPct() > result.LineProfiles[j].PredictedImpactPct()
	})

	if skipped > 0 {
		log.Debugf("skipped %d unrecognized lines in causal profile", skipped)
	}
	return result
}

// parseSample extracts one SpeedupSample. selected= and speedup= are
// required, duration= and selected-samples= default to 0, a missing
// throughput-delta= is taken as equal to the speedup fraction.
func parseSample(line string) (datatype.SpeedupSample, datatype.Location, bool) {
	sample := datatype.SpeedupSample{}
	location := datatype.Location{}

	sel := selectedRegex.FindStringSubmatch(line)
	spd := speedupRegex.FindStringSubmatch(line)
	if sel == nil || spd == nil {
		return sample, location, false
	}

	location.File = sel[1]
	location.Line, _ = strconv.Atoi(sel[2])
	sample.SpeedupFrac, _ = strconv.ParseFloat(spd[1], 64)

	if m := durationRegex.FindStringSubmatch(line); m != nil {
		sample.DurationNs, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := selectedSamplesRegex.FindStringSubmatch(line); m != nil {
		sample.SelectedSamples, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := throughputDeltaRegex.FindStringSubmatch(line); m != nil {
		sample.ThroughputDelta, _ = strconv.ParseFloat(m[1], 64)
	} else {
		sample.ThroughputDelta = sample.SpeedupFrac
	}
	return sample, location, true
}
