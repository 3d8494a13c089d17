package evaluator

import (
	"encoding/binary"
	"sync"

	"github.com/OneOfOne/xxhash"
	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/causal"
	"gitlab.x.lan/yunshan/profiling-libs/datatype"
	"gitlab.x.lan/yunshan/profiling-libs/fitness"
	"gitlab.x.lan/yunshan/profiling-libs/hwcounter"
	"gitlab.x.lan/yunshan/profiling-libs/lru"
	"gitlab.x.lan/yunshan/profiling-libs/offcpu"
	"gitlab.x.lan/yunshan/profiling-libs/stats"
)

var log = logging.MustGetLogger("evaluator")

const (
	PARSE_CACHE_SIZE = 1024

	DEFAULT_CONTEXT_TOP_N = 3
	PERF_CONTEXT_TOP_N    = 5
)

type Counter struct {
	Evaluations int64
	CacheHits   int64
	CacheMisses int64
}

// Evaluator normalizes a candidate's profiler text into typed results,
// scores it against the baseline and produces the mapping-shaped record
// consumed by the external scoring layer. One evaluation at a time per
// Evaluator; independent evaluators carry independent baselines.
type Evaluator struct {
	baseline    *fitness.Baseline
	weights     fitness.Weights
	contextTopN int

	cache *lru.Cache

	mutex   sync.Mutex
	counter Counter
}

func NewEvaluator(baseline *fitness.Baseline, weights fitness.Weights) *Evaluator {
	e := &Evaluator{
		baseline:    baseline,
		weights:     weights,
		contextTopN: DEFAULT_CONTEXT_TOP_N,
		cache:       lru.NewCache(PARSE_CACHE_SIZE),
	}
	stats.RegisterCountable("evaluator", e)
	return e
}

func (e *Evaluator) SetContextTopN(topN int) {
	if topN > 0 {
		e.contextTopN = topN
	}
}

func (e *Evaluator) GetCounter() interface{} {
	e.mutex.Lock()
	counter := e.counter
	e.counter = Counter{}
	e.mutex.Unlock()
	return []stats.StatItem{
		{Name: "evaluations", Type: stats.COUNT_TYPE, Value: counter.Evaluations},
		{Name: "cache_hits", Type: stats.COUNT_TYPE, Value: counter.CacheHits},
		{Name: "cache_misses", Type: stats.COUNT_TYPE, Value: counter.CacheMisses},
	}
}

func (e *Evaluator) Close() {
	stats.DeregisterCountable(e)
}

// Load converts a candidate into a MutationResult, parsing whatever
// profiler capabilities the candidate provides. The capability checks are
// plain type assertions done here once, not repeated attribute probing.
func (e *Evaluator) Load(candidate Candidate) *datatype.MutationResult {
	result := &datatype.MutationResult{
		MutationID:       candidate.ID(),
		Compiled:         candidate.Compiled(),
		TestsPassed:      candidate.TestsPassed(),
		ThroughputOpsSec: candidate.ThroughputOpsSec(),
		P99LatencyUs:     candidate.P99LatencyUs(),
	}

	if provider, ok := candidate.(CausalProvider); ok {
		if text := provider.CausalProfile(); text != "" {
			result.Causal = e.parseCausal(text)
		}
	}
	if provider, ok := candidate.(OffCpuProvider); ok {
		if text := provider.OffCpuReport(); text != "" {
			result.OffCpu = e.parseOffCpu(text)
		}
	}
	if provider, ok := candidate.(HwCounterProvider); ok {
		statText, reportText := provider.PerfStat(), provider.PerfReport()
		if statText != "" || reportText != "" {
			result.HwCounter = e.parseHwCounter(statText, reportText)
		}
	}
	return result
}

// Evaluate scores one loaded result. The returned mapping always carries
// combined_score; per-signal fields and guidance text are present only when
// the corresponding profiler result is.
func (e *Evaluator) Evaluate(result *datatype.MutationResult) map[string]interface{} {
	e.mutex.Lock()
	e.counter.Evaluations++
	e.mutex.Unlock()

	combined := fitness.CausalFitness(result, e.baseline, e.weights)

	record := map[string]interface{}{
		"combined_score":     combined,
		"throughput_ops_sec": result.ThroughputOpsSec,
		"p99_latency_us":     result.P99LatencyUs,
	}

	if result.Causal != nil {
		record["causal_max_impact_pct"] = result.Causal.MaxImpactPct()
		record["causal_max_impact_location"] = result.Causal.MaxImpactLocation()
		record["causal_context"] = causal.GenerateMutationContext(result.Causal, e.contextTopN)
	}
	if result.OffCpu != nil {
		record["off_cpu_ratio"] = result.OffCpu.OffCpuRatio()
		record["off_cpu_context"] = offcpu.GenerateMutationContext(result.OffCpu, e.contextTopN)
	}
	if result.HwCounter != nil {
		record["ipc"] = result.HwCounter.Ipc()
		record["cache_miss_pct"] = result.HwCounter.CacheMissPct()
		record["branch_miss_pct"] = result.HwCounter.BranchMissPct()
		record["perf_context"] = hwcounter.GenerateMutationContext(result.HwCounter, PERF_CONTEXT_TOP_N)
	}

	log.Debugf("mutation %s scored %.4f", result.MutationID, combined)
	return record
}

type cacheKind byte

const (
	kindCausal cacheKind = iota
	kindOffCpu
	kindHwCounter
)

// cacheKey hashes the profile text so identical text is parsed once. Each
// text is length-prefixed so multi-text keys cannot collide across field
// boundaries.
func cacheKey(kind cacheKind, texts ...string) uint64 {
	h := xxhash.New64()
	h.Write([]byte{byte(kind)})
	var length [8]byte
	for _, text := range texts {
		binary.LittleEndian.PutUint64(length[:], uint64(len(text)))
		h.Write(length[:])
		h.WriteString(text)
	}
	return h.Sum64()
}

func (e *Evaluator) parseCausal(text string) *datatype.CausalResult {
	key := cacheKey(kindCausal, text)
	if cached, ok := e.cacheGet(key); ok {
		return cached.(*datatype.CausalResult)
	}
	result := causal.Parse(text)
	e.cachePut(key, result)
	return result
}

func (e *Evaluator) parseOffCpu(text string) *datatype.OffCpuResult {
	key := cacheKey(kindOffCpu, text)
	if cached, ok := e.cacheGet(key); ok {
		return cached.(*datatype.OffCpuResult)
	}
	result := offcpu.Parse(text)
	e.cachePut(key, result)
	return result
}

func (e *Evaluator) parseHwCounter(statText, reportText string) *datatype.HwCounterResult {
	key := cacheKey(kindHwCounter, statText, reportText)
	if cached, ok := e.cacheGet(key); ok {
		return cached.(*datatype.HwCounterResult)
	}
	result := hwcounter.Parse(statText, reportText)
	e.cachePut(key, result)
	return result
}

func (e *Evaluator) cacheGet(key uint64) (interface{}, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	value, ok := e.cache.Get(key)
	if ok {
		e.counter.CacheHits++
	} else {
		e.counter.CacheMisses++
	}
	return value, ok
}

func (e *Evaluator) cachePut(key uint64, value interface{}) {
	e.mutex.Lock()
	e.cache.Add(key, value)
	e.mutex.Unlock()
}
