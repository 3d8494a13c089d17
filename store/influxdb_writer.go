package store

import (
	"sync"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	logging "github.com/op/go-logging"

	"gitlab.x.lan/yunshan/profiling-libs/stats"
)

var log = logging.MustGetLogger("store")

const (
	DATABASE           = "mutation_history"
	MEASUREMENT        = "evaluation"
	DEFAULT_BATCH_SIZE = 64
	DEFAULT_PRECISION  = "ns"
)

// EvaluationPoint is one evaluated mutation written to the history database,
// one point per evaluation. An optimization loop can chart fitness per
// generation from these.
type EvaluationPoint struct {
	Timestamp  time.Time
	MutationID string
	Valid      bool

	Fitness            float64
	ThroughputOpsSec   float64
	P99LatencyUs       float64
	CausalMaxImpactPct float64
	OffCpuRatio        float64
}

type WriterCounter struct {
	WriteSuccess int64
	WriteFailed  int64
}

// InfluxdbWriter batches evaluation points and writes them to influxdb over
// HTTP. Put never blocks on the network longer than one batch write.
type InfluxdbWriter struct {
	httpClient client.Client
	batchSize  int

	mutex   sync.Mutex
	pending []*EvaluationPoint
	counter WriterCounter
}

func NewInfluxdbWriter(httpAddr string, batchSize int) (*InfluxdbWriter, error) {
	httpClient, err := client.NewHTTPClient(client.HTTPConfig{Addr: httpAddr})
	if err != nil {
		log.Error("create influxdb http client failed:", err)
		return nil, err
	}
	if _, _, err := httpClient.Ping(0); err != nil {
		log.Errorf("http connect to influxdb(%s) failed: %s", httpAddr, err)
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DEFAULT_BATCH_SIZE
	}
	writer := &InfluxdbWriter{
		httpClient: httpClient,
		batchSize:  batchSize,
		pending:    make([]*EvaluationPoint, 0, batchSize),
	}
	stats.RegisterCountable("influxdb_writer", writer)
	return writer, nil
}

func (w *InfluxdbWriter) GetCounter() interface{} {
	w.mutex.Lock()
	counter := w.counter
	w.counter = WriterCounter{}
	w.mutex.Unlock()
	return []stats.StatItem{
		{Name: "write_success", Type: stats.COUNT_TYPE, Value: counter.WriteSuccess},
		{Name: "write_failed", Type: stats.COUNT_TYPE, Value: counter.WriteFailed},
	}
}

// Put queues one point, flushing when the batch fills.
func (w *InfluxdbWriter) Put(point *EvaluationPoint) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.pending = append(w.pending, point)
	if len(w.pending) >= w.batchSize {
		return w.flushLocked()
	}
	return nil
}

func (w *InfluxdbWriter) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.flushLocked()
}

func (w *InfluxdbWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	stats.DeregisterCountable(w)
	return w.httpClient.Close()
}

func (w *InfluxdbWriter) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}
	batch, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  DATABASE,
		Precision: DEFAULT_PRECISION,
	})
	if err != nil {
		return err
	}
	for _, p := range w.pending {
		timestamp := p.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now()
		}
		tags := map[string]string{
			"mutation_id": p.MutationID,
		}
		fields := map[string]interface{}{
			"valid":                 p.Valid,
			"fitness":               p.Fitness,
			"throughput_ops_sec":    p.ThroughputOpsSec,
			"p99_latency_us":        p.P99LatencyUs,
			"causal_max_impact_pct": p.CausalMaxImpactPct,
			"off_cpu_ratio":         p.OffCpuRatio,
		}
		point, err := client.NewPoint(MEASUREMENT, tags, fields, timestamp)
		if err != nil {
			log.Warningf("drop bad evaluation point %s: %s", p.MutationID, err)
			continue
		}
		batch.AddPoint(point)
	}

	n := int64(len(w.pending))
	w.pending = w.pending[:0]
	// 写失败直接丢弃，避免反复重试阻塞评估循环
	if err := w.httpClient.Write(batch); err != nil {
		w.counter.WriteFailed += n
		log.Errorf("write %d evaluation points failed: %s", n, err)
		return err
	}
	w.counter.WriteSuccess += n
	return nil
}
