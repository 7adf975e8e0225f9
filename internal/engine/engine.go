package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
)

// Engine binds the rolling-statistics registry, the per-metric detector
// configuration, and the correlator weighting into one monitoring session.
// State is scoped to the instance; two engines never share windows.
type Engine struct {
	registry *Registry
	configs  map[domain.Metric]MetricConfig
	corr     CorrelatorConfig
}

func New(windowSize int, configs map[domain.Metric]MetricConfig, corr CorrelatorConfig) (*Engine, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("at least one metric must be configured")
	}
	for m, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("metric %s: %w", m, err)
		}
	}
	if err := corr.Validate(); err != nil {
		return nil, fmt.Errorf("correlator: %w", err)
	}
	return &Engine{
		registry: NewRegistry(windowSize),
		configs:  configs,
		corr:     corr,
	}, nil
}

// Update feeds one raw value into the rolling window for (sensorID, metric)
// and returns the refreshed baseline.
func (e *Engine) Update(sensorID string, metric domain.Metric, value float64) (domain.Baseline, error) {
	return e.registry.Update(sensorID, metric, value)
}

// Evaluate applies the metric's configured rules to a reading. The metric
// must be configured; unknown metrics are a caller error.
func (e *Engine) Evaluate(r *domain.Reading, b domain.Baseline) (domain.Verdict, error) {
	cfg, ok := e.configs[r.Metric]
	if !ok {
		return domain.Verdict{}, fmt.Errorf("metric %s is not configured", r.Metric)
	}
	return Evaluate(r, b, cfg), nil
}

// Correlate aggregates verdicts from one cycle into an assessment.
func (e *Engine) Correlate(verdicts []domain.Verdict) domain.Assessment {
	return e.corr.Correlate(verdicts)
}

// RunCycle processes one synchronized round of readings: update every
// window, evaluate every verdict, correlate. Invalid readings are skipped
// without touching their windows, and a cycle that ends up with fewer
// verdicts than configured metrics is still correlated over the available
// subset; both conditions are surfaced through the joined error
// (ErrInvalidReading, ErrIncompleteCycle) so the caller can decide whether
// to publish or discard the assessment.
func (e *Engine) RunCycle(readings []*domain.Reading) (domain.Assessment, []domain.Verdict, error) {
	var (
		verdicts []domain.Verdict
		errs     []error
		sensorID string
		ts       time.Time
	)

	for _, r := range readings {
		if sensorID == "" {
			sensorID = r.SensorID
		}
		if r.Timestamp.After(ts) {
			ts = r.Timestamp
		}

		baseline, err := e.Update(r.SensorID, r.Metric, r.Value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		v, err := e.Evaluate(r, baseline)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		verdicts = append(verdicts, v)
	}

	if len(verdicts) < len(e.configs) {
		errs = append(errs, fmt.Errorf("%d of %d metrics reported: %w",
			len(verdicts), len(e.configs), ErrIncompleteCycle))
	}

	a := e.Correlate(verdicts)
	a.SensorID = sensorID
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	a.Timestamp = ts

	return a, verdicts, errors.Join(errs...)
}

// Metrics returns the configured metric names, sorted.
func (e *Engine) Metrics() []domain.Metric {
	out := make([]domain.Metric, 0, len(e.configs))
	for m := range e.configs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MetricConfig reports the settings for one metric.
func (e *Engine) MetricConfig(m domain.Metric) (MetricConfig, bool) {
	cfg, ok := e.configs[m]
	return cfg, ok
}

// Reset clears every rolling window while keeping the configuration.
func (e *Engine) Reset() {
	e.registry.Reset()
}
