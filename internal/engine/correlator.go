package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/hawkmon/breachwatch/internal/domain"
)

// CorrelatorConfig exposes the severity weighting as tunable constants
// rather than magic numbers inside the aggregation.
//
// The level for a cycle with n anomalous metrics is
//
//	clamp(round(base + bonus + critical), 0, 10)
//
// where base = base_weight * (1 + damping + ... + damping^(n-1)), bonus =
// score_weight * sum(min(score_i, score_cap)), and critical adds
// critical_bonus once per triggered metric listed in critical_metrics.
// Every term depends only on the set of anomalous verdicts, never on their
// order, so correlation is commutative.
type CorrelatorConfig struct {
	BaseWeight      float64         `yaml:"base_weight"`
	Damping         float64         `yaml:"damping"`
	ScoreWeight     float64         `yaml:"score_weight"`
	ScoreCap        float64         `yaml:"score_cap"`
	CriticalBonus   float64         `yaml:"critical_bonus"`
	CriticalMetrics []domain.Metric `yaml:"critical_metrics"`
}

func DefaultCorrelatorConfig() CorrelatorConfig {
	return CorrelatorConfig{
		BaseWeight:      2.0,
		Damping:         0.85,
		ScoreWeight:     0.4,
		ScoreCap:        6.0,
		CriticalBonus:   1.0,
		CriticalMetrics: []domain.Metric{domain.MetricTemperature, domain.MetricGas},
	}
}

func (c CorrelatorConfig) Validate() error {
	if c.BaseWeight < 1 {
		return fmt.Errorf("base_weight must be >= 1, got %.2f", c.BaseWeight)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %.2f", c.Damping)
	}
	if c.ScoreWeight < 0 || c.ScoreCap < 0 || c.CriticalBonus < 0 {
		return fmt.Errorf("score_weight, score_cap and critical_bonus must be non-negative")
	}
	return nil
}

// Severity labels for display, indexed by level.
var breachLabels = [11]string{
	"All clear",
	"Minor fluctuation",
	"Elevated",
	"Unusual activity",
	"Gate resonance",
	"Dimensional stress",
	"Portal instability",
	"Breach imminent",
	"Upside Down contact",
	"Full breach",
	"Critical: evacuate",
}

// Correlate aggregates one cycle's verdicts into a breach assessment.
// It is a pure function of the verdict set: reordering the input never
// changes the level. SensorID and Timestamp are left for the caller to
// stamp.
func (c CorrelatorConfig) Correlate(verdicts []domain.Verdict) domain.Assessment {
	critical := make(map[domain.Metric]bool, len(c.CriticalMetrics))
	for _, m := range c.CriticalMetrics {
		critical[m] = true
	}

	var (
		metrics  []domain.Metric
		maxScore float64
		bonus    float64
		critSum  float64
	)
	for _, v := range verdicts {
		if !v.Anomalous {
			continue
		}
		metrics = append(metrics, v.Metric)
		bonus += c.ScoreWeight * math.Min(v.Score, c.ScoreCap)
		if critical[v.Metric] {
			critSum += c.CriticalBonus
		}
		if v.Score > maxScore {
			maxScore = v.Score
		}
	}

	if len(metrics) == 0 {
		return domain.Assessment{
			Label:          breachLabels[0],
			Recommendation: recommendation(0),
		}
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })

	var base float64
	weight := c.BaseWeight
	for i := 0; i < len(metrics); i++ {
		base += weight
		weight *= c.Damping
	}

	level := int(math.Round(base + bonus + critSum))
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}

	return domain.Assessment{
		Level:          level,
		Metrics:        metrics,
		MaxScore:       maxScore,
		Label:          breachLabels[level],
		Recommendation: recommendation(level),
	}
}

func recommendation(level int) string {
	switch {
	case level == 0:
		return "Continue standard monitoring."
	case level <= 3:
		return "Increase scan frequency and watch for additional triggers."
	case level <= 6:
		return "Alert lab security and prepare containment protocols."
	case level <= 8:
		return "Initiate lockdown procedures."
	default:
		return "Evacuate. Full breach protocol."
	}
}
