package engine

import (
	"testing"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func anomalousVerdict(m domain.Metric, score float64) domain.Verdict {
	return domain.Verdict{Metric: m, Anomalous: true, Method: domain.MethodZScore, Score: score}
}

func normalVerdict(m domain.Metric) domain.Verdict {
	return domain.Verdict{Metric: m}
}

func TestCorrelateQuietCycleIsLevelZero(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	a := cfg.Correlate([]domain.Verdict{
		normalVerdict(domain.MetricTemperature),
		normalVerdict(domain.MetricGas),
		normalVerdict(domain.MetricVibration),
		normalVerdict(domain.MetricCPUUsage),
	})

	if a.Level != 0 {
		t.Fatalf("expected level 0, got %d", a.Level)
	}
	if len(a.Metrics) != 0 {
		t.Fatalf("expected no contributing metrics, got %v", a.Metrics)
	}
	if a.Label != "All clear" {
		t.Fatalf("unexpected label %q", a.Label)
	}

	if b := cfg.Correlate(nil); b.Level != 0 || len(b.Metrics) != 0 {
		t.Fatalf("empty input must be level 0, got %+v", b)
	}
}

func TestCorrelateAnyAnomalyIsAtLeastLevelOne(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	a := cfg.Correlate([]domain.Verdict{anomalousVerdict(domain.MetricVibration, 0.01)})
	if a.Level < 1 {
		t.Fatalf("anomalous cycle must score at least 1, got %d", a.Level)
	}
	if len(a.Metrics) != 1 || a.Metrics[0] != domain.MetricVibration {
		t.Fatalf("unexpected contributing metrics %v", a.Metrics)
	}
}

func TestCorrelateMultiSensorScoresStrictlyHigher(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	one := cfg.Correlate([]domain.Verdict{anomalousVerdict(domain.MetricVibration, 3.0)})
	two := cfg.Correlate([]domain.Verdict{
		anomalousVerdict(domain.MetricVibration, 3.0),
		anomalousVerdict(domain.MetricCPUUsage, 3.0),
	})
	three := cfg.Correlate([]domain.Verdict{
		anomalousVerdict(domain.MetricVibration, 3.0),
		anomalousVerdict(domain.MetricCPUUsage, 3.0),
		anomalousVerdict(domain.MetricGas, 3.0),
	})

	if two.Level <= one.Level {
		t.Fatalf("two anomalous metrics must score above one: %d <= %d", two.Level, one.Level)
	}
	if three.Level <= two.Level {
		t.Fatalf("three anomalous metrics must score above two: %d <= %d", three.Level, two.Level)
	}
}

func TestCorrelateIsCommutative(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	verdicts := []domain.Verdict{
		anomalousVerdict(domain.MetricTemperature, 4.2),
		normalVerdict(domain.MetricGas),
		anomalousVerdict(domain.MetricVibration, 1.1),
		anomalousVerdict(domain.MetricCPUUsage, 2.7),
	}

	want := cfg.Correlate(verdicts)

	permutations := [][]int{
		{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
	}
	for _, p := range permutations {
		shuffled := make([]domain.Verdict, len(verdicts))
		for i, j := range p {
			shuffled[i] = verdicts[j]
		}
		got := cfg.Correlate(shuffled)
		if got.Level != want.Level || got.MaxScore != want.MaxScore {
			t.Fatalf("correlation depends on input order: %+v vs %+v", got, want)
		}
		if len(got.Metrics) != len(want.Metrics) {
			t.Fatalf("metric sets differ: %v vs %v", got.Metrics, want.Metrics)
		}
		for i := range got.Metrics {
			if got.Metrics[i] != want.Metrics[i] {
				t.Fatalf("metric order not canonical: %v vs %v", got.Metrics, want.Metrics)
			}
		}
	}
}

func TestCorrelateClampsAtTen(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	a := cfg.Correlate([]domain.Verdict{
		anomalousVerdict(domain.MetricTemperature, 50),
		anomalousVerdict(domain.MetricGas, 50),
		anomalousVerdict(domain.MetricVibration, 50),
		anomalousVerdict(domain.MetricCPUUsage, 50),
	})

	if a.Level != 10 {
		t.Fatalf("expected clamp at 10, got %d", a.Level)
	}
	if a.MaxScore != 50 {
		t.Fatalf("expected max score 50, got %f", a.MaxScore)
	}
	if a.Label != "Critical: evacuate" {
		t.Fatalf("unexpected label %q", a.Label)
	}
}

func TestCorrelateCriticalMetricsRaiseLevel(t *testing.T) {
	cfg := DefaultCorrelatorConfig()

	plain := cfg.Correlate([]domain.Verdict{anomalousVerdict(domain.MetricVibration, 2.0)})
	critical := cfg.Correlate([]domain.Verdict{anomalousVerdict(domain.MetricGas, 2.0)})

	if critical.Level <= plain.Level {
		t.Fatalf("critical metric must outrank a plain one at equal score: %d <= %d",
			critical.Level, plain.Level)
	}
}

func TestCorrelatorConfigValidate(t *testing.T) {
	cfg := DefaultCorrelatorConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := cfg
	bad.Damping = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero damping")
	}

	bad = cfg
	bad.BaseWeight = 0.5
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for base weight below 1")
	}
}
