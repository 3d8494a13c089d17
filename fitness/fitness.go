package fitness

import (
	"math"

	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/datatype"
)

var log = logging.MustGetLogger("fitness")

const (
	// 各分量得分的上下限，抑制测量噪声导致的发散
	MIN_CAUSAL_SCORE      = 0.1
	MIN_LATENCY_US        = 1.0
	MIN_OFF_CPU_RATIO     = 0.01
	MAX_OFF_CPU_SCORE     = 5.0
	FAST_THROUGHPUT_SHARE = 0.7
	FAST_LATENCY_SHARE    = 0.3
)

// Weights are the relative shares of the four fitness components. They need
// not sum to 1, non-degenerate inputs are renormalized. Negative weights are
// invalid.
type Weights struct {
	Throughput float64 `yaml:"throughput"`
	Latency    float64 `yaml:"latency"`
	Causal     float64 `yaml:"causal"`
	OffCpu     float64 `yaml:"off-cpu"`
}

func DefaultWeights() Weights {
	return Weights{
		Throughput: 0.30,
		Latency:    0.20,
		Causal:     0.30,
		OffCpu:     0.20,
	}
}

// CausalFitness combines raw performance with the optional profiler signals
// into one baseline-relative scalar: 0.0 means the mutation failed, 1.0
// matches baseline, above 1.0 improves on it. Weights of absent signals are
// zeroed and the remainder renormalized, so the score stays comparable as
// signals come and go. Rounded to 4 decimal places.
func CausalFitness(result *datatype.MutationResult, baseline *Baseline, weights Weights) float64 {
	if !result.IsValid() {
		return 0.0
	}

	if result.Causal == nil {
		weights.Causal = 0.0
	}
	if result.OffCpu == nil {
		weights.OffCpu = 0.0
	}

	totalWeight := weights.Throughput + weights.Latency + weights.Causal + weights.OffCpu
	if totalWeight == 0 {
		return 0.0
	}
	weights.Throughput /= totalWeight
	weights.Latency /= totalWeight
	weights.Causal /= totalWeight
	weights.OffCpu /= totalWeight

	throughputScore := result.ThroughputOpsSec / baseline.ThroughputOpsSec
	latencyScore := baseline.P99LatencyUs / math.Max(result.P99LatencyUs, MIN_LATENCY_US)

	// 候选变更压低了因果分析的最大瓶颈时得分大于1
	causalScore := 0.0
	if result.Causal != nil && result.Causal.MaxImpactPct() > 0 && baseline.CausalMaxImpactPct != 0 {
		reduction := baseline.CausalMaxImpactPct - result.Causal.MaxImpactPct()
		causalScore = 1.0 + reduction/baseline.CausalMaxImpactPct
		causalScore = math.Max(causalScore, MIN_CAUSAL_SCORE)
	}

	offCpuScore := 0.0
	if result.OffCpu != nil {
		offCpuScore = baseline.OffCpuRatio / math.Max(result.OffCpu.OffCpuRatio(), MIN_OFF_CPU_RATIO)
		offCpuScore = math.Min(offCpuScore, MAX_OFF_CPU_SCORE)
	}

	combined := weights.Throughput*throughputScore +
		weights.Latency*latencyScore +
		weights.Causal*causalScore +
		weights.OffCpu*offCpuScore

	return round4(combined)
}

// FastFitness scores a mutation from raw throughput and latency alone, with
// fixed 0.7/0.3 shares. Used when no profiler signal is available at all.
func FastFitness(result *datatype.MutationResult, baseline *Baseline) float64 {
	if !result.IsValid() {
		return 0.0
	}

	throughputScore := result.ThroughputOpsSec / baseline.ThroughputOpsSec
	latencyScore := baseline.P99LatencyUs / math.Max(result.P99LatencyUs, MIN_LATENCY_US)

	return round4(FAST_THROUGHPUT_SHARE*throughputScore + FAST_LATENCY_SHARE*latencyScore)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
