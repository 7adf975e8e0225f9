package calibrate

import (
	"testing"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func TestLinearAppliesAdjustment(t *testing.T) {
	c, err := New(Config{
		Version: 3,
		Adjustments: map[domain.Metric]Adjustment{
			domain.MetricTemperature: {Scale: 1.1, Offset: -0.5},
		},
	})
	if err != nil {
		t.Fatalf("new calibrator: %v", err)
	}

	in := &domain.Reading{Metric: domain.MetricTemperature, Value: 20}
	out, err := c.Calibrate(in)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	if out.Value != 21.5 {
		t.Fatalf("expected 21.5, got %f", out.Value)
	}
	if in.Value != 20 {
		t.Fatalf("input reading must not be mutated, got %f", in.Value)
	}
	if c.Version() != 3 {
		t.Fatalf("expected version 3, got %d", c.Version())
	}
}

func TestLinearPassThroughUnconfigured(t *testing.T) {
	c := Identity()

	in := &domain.Reading{Metric: domain.MetricGas, Value: 12.5}
	out, err := c.Calibrate(in)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	if out != in {
		t.Fatalf("unconfigured metric should pass through unchanged")
	}
}

func TestLinearRejectsBadScale(t *testing.T) {
	_, err := New(Config{
		Adjustments: map[domain.Metric]Adjustment{
			domain.MetricGas: {Scale: -2},
		},
	})
	if err == nil {
		t.Fatalf("expected error for negative scale")
	}
}

func TestLinearNilReading(t *testing.T) {
	if _, err := Identity().Calibrate(nil); err == nil {
		t.Fatalf("expected error for nil reading")
	}
}
