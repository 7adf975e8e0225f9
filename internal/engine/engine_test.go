package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func testConfigs() map[domain.Metric]MetricConfig {
	return map[domain.Metric]MetricConfig{
		domain.MetricTemperature: {Low: 15, High: 32, ZScoreLimit: 2.5, Mode: ModeBoth, Critical: true},
		domain.MetricGas:         {Low: 0, High: 75, ZScoreLimit: 2.5, Mode: ModeBoth, Critical: true},
		domain.MetricVibration:   {Low: 0, High: 4, ZScoreLimit: 2.5, Mode: ModeBoth},
		domain.MetricCPUUsage:    {Low: 0, High: 85, ZScoreLimit: 2.5, Mode: ModeBoth},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(20, testConfigs(), DefaultCorrelatorConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func cycleReadings(ts time.Time, values map[domain.Metric]float64) []*domain.Reading {
	var out []*domain.Reading
	for m, v := range values {
		out = append(out, &domain.Reading{
			SensorID:  "LAB-001",
			Metric:    m,
			Value:     v,
			Timestamp: ts,
		})
	}
	return out
}

func TestRunCycleQuiet(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Now().UTC()

	a, verdicts, err := e.RunCycle(cycleReadings(ts, map[domain.Metric]float64{
		domain.MetricTemperature: 22,
		domain.MetricGas:         10,
		domain.MetricVibration:   1,
		domain.MetricCPUUsage:    40,
	}))
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if len(verdicts) != 4 {
		t.Fatalf("expected 4 verdicts, got %d", len(verdicts))
	}
	if a.Level != 0 || len(a.Metrics) != 0 {
		t.Fatalf("expected all-clear assessment, got %+v", a)
	}
	if a.SensorID != "LAB-001" || !a.Timestamp.Equal(ts) {
		t.Fatalf("assessment not stamped from readings: %+v", a)
	}
}

func TestRunCycleFlagsThresholdBreaches(t *testing.T) {
	e := newTestEngine(t)

	a, _, err := e.RunCycle(cycleReadings(time.Now(), map[domain.Metric]float64{
		domain.MetricTemperature: 45, // above 32
		domain.MetricGas:         120, // above 75
		domain.MetricVibration:   1,
		domain.MetricCPUUsage:    40,
	}))
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if a.Level == 0 {
		t.Fatalf("expected breach, got %+v", a)
	}
	if len(a.Metrics) != 2 {
		t.Fatalf("expected two contributing metrics, got %v", a.Metrics)
	}
	if a.Metrics[0] != domain.MetricGas || a.Metrics[1] != domain.MetricTemperature {
		t.Fatalf("expected sorted contributing metrics, got %v", a.Metrics)
	}
}

func TestRunCycleInvalidReadingIsObservable(t *testing.T) {
	e := newTestEngine(t)

	a, verdicts, err := e.RunCycle(cycleReadings(time.Now(), map[domain.Metric]float64{
		domain.MetricTemperature: 22,
		domain.MetricGas:         math.NaN(),
		domain.MetricVibration:   1,
		domain.MetricCPUUsage:    40,
	}))
	if !errors.Is(err, ErrInvalidReading) {
		t.Fatalf("expected ErrInvalidReading, got %v", err)
	}
	if !errors.Is(err, ErrIncompleteCycle) {
		t.Fatalf("a rejected reading leaves the cycle incomplete, got %v", err)
	}
	if len(verdicts) != 3 {
		t.Fatalf("expected 3 verdicts from the remaining metrics, got %d", len(verdicts))
	}
	// The assessment is still produced over the available subset.
	if a.Level != 0 {
		t.Fatalf("expected quiet subset assessment, got %+v", a)
	}

	// The gas window must not have learned the NaN.
	if _, ok := e.registry.Baseline("LAB-001", domain.MetricGas); ok {
		t.Fatalf("rejected reading must not create a window")
	}
}

func TestRunCyclePartialIsIncomplete(t *testing.T) {
	e := newTestEngine(t)

	a, verdicts, err := e.RunCycle(cycleReadings(time.Now(), map[domain.Metric]float64{
		domain.MetricTemperature: 22,
		domain.MetricGas:         10,
	}))
	if !errors.Is(err, ErrIncompleteCycle) {
		t.Fatalf("expected ErrIncompleteCycle, got %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	if a.SensorID != "LAB-001" {
		t.Fatalf("assessment must still be stamped: %+v", a)
	}
}

func TestRunCycleUnknownMetric(t *testing.T) {
	e := newTestEngine(t)

	_, _, err := e.RunCycle([]*domain.Reading{{
		SensorID: "LAB-001",
		Metric:   domain.Metric("humidity"),
		Value:    55,
	}})
	if err == nil || !errors.Is(err, ErrIncompleteCycle) {
		t.Fatalf("expected unknown metric to degrade the cycle, got %v", err)
	}
}

func TestZScorePathLearnsDrift(t *testing.T) {
	e := newTestEngine(t)

	// Feed a stable baseline well inside the threshold band.
	for i := 0; i < 20; i++ {
		v := 22.0
		if i%2 == 0 {
			v = 23.0
		}
		if _, err := e.Update("LAB-001", domain.MetricTemperature, v); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	b, _ := e.registry.Baseline("LAB-001", domain.MetricTemperature)
	r := &domain.Reading{SensorID: "LAB-001", Metric: domain.MetricTemperature, Value: 28}

	v, err := e.Evaluate(r, b)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// 28 is inside [15, 32] but far outside the learned 22-23 band.
	if !v.Anomalous || v.Method != domain.MethodZScore {
		t.Fatalf("expected z-score anomaly for in-band drift, got %+v", v)
	}
}

func TestEngineNewRejectsBadConfig(t *testing.T) {
	if _, err := New(20, nil, DefaultCorrelatorConfig()); err == nil {
		t.Fatalf("expected error for empty metric config")
	}

	bad := testConfigs()
	bad[domain.MetricGas] = MetricConfig{Low: 75, High: 0, ZScoreLimit: 2.5, Mode: ModeBoth}
	if _, err := New(20, bad, DefaultCorrelatorConfig()); err == nil {
		t.Fatalf("expected error for inverted gas bounds")
	}
}
