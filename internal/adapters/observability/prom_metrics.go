package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// PromObs is the production Observability adapter: structured logs via zap
// and the full metric surface on the default Prometheus registry.
type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer

	breachLevel prometheus.Gauge
	scores      *prometheus.GaugeVec
}

func NewPromObs(logger *zap.Logger) *PromObs {
	if logger == nil {
		logger = zap.NewNop()
	}

	readings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_readings_total",
		Help: "Total sensor readings accepted into rolling windows.",
	})
	invalid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_invalid_readings_total",
		Help: "Readings rejected before they could touch tracker state.",
	})
	anomalies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_anomalies_total",
		Help: "Verdicts flagged anomalous by either detection rule.",
	})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_degraded_cycles_total",
		Help: "Cycles correlated over a partial metric set.",
	})
	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_events_ingested_total",
		Help: "Breach events successfully written to the sink.",
	})
	dead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_dead_events_total",
		Help: "Breach events lost to backpressure or permanent sink failures.",
	})
	queueDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "breachwatch_queue_dropped_total",
		Help: "Breach events dropped by queue backpressure policies.",
	})

	walGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "breachwatch_wal_size_bytes",
		Help: "Size of the event WAL on disk.",
	})
	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "breachwatch_queue_length",
		Help: "Breach events buffered in the in-memory queue.",
	})
	breachLevel := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "breachwatch_breach_level",
		Help: "Breach level of the most recent correlation cycle (0-10).",
	})
	scores := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "breachwatch_sensor_score",
		Help: "Latest anomaly score per metric.",
	}, []string{"metric"})

	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "breachwatch_sink_latency_seconds",
		Help:    "End-to-end latency from dequeued event to sink commit.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(readings, invalid, anomalies, degraded, ingested,
		dead, queueDrops, walGauge, queueGauge, breachLevel, scores, latency)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			"breachwatch_readings_total":         readings,
			"breachwatch_invalid_readings_total": invalid,
			"breachwatch_anomalies_total":        anomalies,
			"breachwatch_degraded_cycles_total":  degraded,
			"breachwatch_events_ingested_total":  ingested,
			"breachwatch_dead_events_total":      dead,
			"breachwatch_queue_dropped_total":    queueDrops,
		},
		gauges: map[string]prometheus.Gauge{
			"breachwatch_wal_size_bytes": walGauge,
			"breachwatch_queue_length":   queueGauge,
		},
		histos: map[string]prometheus.Observer{
			"breachwatch_sink_latency_seconds": latency,
		},
		breachLevel: breachLevel,
		scores:      scores,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) SetMetricScore(metric domain.Metric, score float64) {
	p.scores.WithLabelValues(string(metric)).Set(score)
}

func (p *PromObs) RecordBreach(a *domain.Assessment) {
	p.breachLevel.Set(float64(a.Level))
	if a.Level > 0 {
		p.log.Warn("breach assessed",
			zap.String("sensor_id", a.SensorID),
			zap.Int("level", a.Level),
			zap.String("label", a.Label),
			zap.Float64("max_score", a.MaxScore))
	}
}

func (p *PromObs) RecordDeadEvent(id ports.WALEntryID, a *domain.Assessment, err error) {
	p.IncCounter("breachwatch_dead_events_total", 1)
	fields := []zap.Field{zap.Uint64("wal_id", uint64(id)), zap.Error(err)}
	if a != nil {
		fields = append(fields, zap.String("sensor_id", a.SensorID), zap.Int("level", a.Level))
	}
	p.log.Error("dead breach event", fields...)
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
