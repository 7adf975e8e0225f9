package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func newTestObs(t *testing.T) *PromObs {
	t.Helper()

	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	return NewPromObs(zap.NewNop())
}

func TestPromObsMetrics(t *testing.T) {
	obs := newTestObs(t)

	obs.IncCounter("breachwatch_readings_total", 5)
	if got := testutil.ToFloat64(obs.counters["breachwatch_readings_total"]); got != 5 {
		t.Fatalf("expected readings counter 5, got %f", got)
	}

	obs.IncCounter("breachwatch_queue_dropped_total", 2)
	if got := testutil.ToFloat64(obs.counters["breachwatch_queue_dropped_total"]); got != 2 {
		t.Fatalf("expected queue drop counter 2, got %f", got)
	}

	obs.SetGauge("breachwatch_wal_size_bytes", 42)
	if got := testutil.ToFloat64(obs.gauges["breachwatch_wal_size_bytes"]); got != 42 {
		t.Fatalf("expected wal gauge 42, got %f", got)
	}

	obs.ObserveLatency("breachwatch_sink_latency_seconds", 0.5)
	hCollector := obs.histos["breachwatch_sink_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}
}

func TestPromObsBreachAndScores(t *testing.T) {
	obs := newTestObs(t)

	obs.SetMetricScore(domain.MetricGas, 2.75)
	if got := testutil.ToFloat64(obs.scores.WithLabelValues("gas")); got != 2.75 {
		t.Fatalf("expected gas score 2.75, got %f", got)
	}

	obs.RecordBreach(&domain.Assessment{SensorID: "LAB-001", Level: 7, Label: "Major breach"})
	if got := testutil.ToFloat64(obs.breachLevel); got != 7 {
		t.Fatalf("expected breach level 7, got %f", got)
	}

	obs.RecordDeadEvent(3, &domain.Assessment{SensorID: "LAB-001", Level: 7}, nil)
	if got := testutil.ToFloat64(obs.counters["breachwatch_dead_events_total"]); got != 1 {
		t.Fatalf("expected dead event counter 1, got %f", got)
	}
}
