package engine

import (
	"fmt"
	"math"

	"github.com/hawkmon/breachwatch/internal/domain"
)

// Mode selects which detection rules apply to a metric.
type Mode string

const (
	ModeThreshold Mode = "threshold"
	ModeZScore    Mode = "zscore"
	ModeBoth      Mode = "both"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeThreshold, ModeZScore, ModeBoth:
		return Mode(s), nil
	case "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("unknown detection mode %q", s)
	}
}

// MetricConfig holds the per-metric detection settings.
type MetricConfig struct {
	Low         float64 `yaml:"low"`
	High        float64 `yaml:"high"`
	ZScoreLimit float64 `yaml:"zscore_limit"`
	Mode        Mode    `yaml:"mode"`
	Unit        string  `yaml:"unit"`
	Critical    bool    `yaml:"critical"`
}

func (c MetricConfig) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.Mode != ModeZScore && c.Low >= c.High {
		return fmt.Errorf("low %.2f must be below high %.2f", c.Low, c.High)
	}
	if c.Mode != ModeThreshold && c.ZScoreLimit <= 0 {
		return fmt.Errorf("zscore_limit must be positive, got %.2f", c.ZScoreLimit)
	}
	return nil
}

// Evaluate applies the configured rules to one reading against its current
// baseline. It never mutates the registry; verdicts for readings the rules
// do not flag come back with Anomalous == false and MethodNone.
//
// When both rules fire, the verdict carries the larger score; an exact tie
// goes to the z-score rule since it reflects drift from the learned
// baseline rather than a fixed bound.
func Evaluate(r *domain.Reading, b domain.Baseline, cfg MetricConfig) domain.Verdict {
	v := domain.Verdict{Metric: r.Metric, Value: r.Value}

	var (
		thrFired, zFired   bool
		thrScore, zScore   float64
		thrReason, zReason string
	)

	if cfg.Mode == ModeThreshold || cfg.Mode == ModeBoth {
		thrFired, thrScore, thrReason = thresholdRule(r.Value, cfg)
	}
	if cfg.Mode == ModeZScore || cfg.Mode == ModeBoth {
		zFired, zScore, zReason = zscoreRule(r.Value, b, cfg)
	}

	switch {
	case thrFired && (!zFired || thrScore > zScore):
		v.Anomalous = true
		v.Method = domain.MethodThreshold
		v.Score = thrScore
		v.Reason = thrReason
	case zFired:
		v.Anomalous = true
		v.Method = domain.MethodZScore
		v.Score = zScore
		v.Reason = zReason
	}
	return v
}

// thresholdRule flags values strictly outside [low, high]. The score is the
// distance past the violated bound divided by the band width: 0 at the
// bound, growing without limit beyond it.
func thresholdRule(value float64, cfg MetricConfig) (bool, float64, string) {
	band := cfg.High - cfg.Low
	if band <= 0 {
		return false, 0, ""
	}
	switch {
	case value < cfg.Low:
		return true, (cfg.Low - value) / band,
			fmt.Sprintf("value %.2f below threshold %.2f", value, cfg.Low)
	case value > cfg.High:
		return true, (value - cfg.High) / band,
			fmt.Sprintf("value %.2f above threshold %.2f", value, cfg.High)
	}
	return false, 0, ""
}

// zscoreRule flags values whose z-score magnitude strictly exceeds the
// configured limit. With fewer than two samples, or a window of identical
// values, the z-score cannot discriminate and the rule stays silent.
func zscoreRule(value float64, b domain.Baseline, cfg MetricConfig) (bool, float64, string) {
	if b.SampleCount < 2 || b.StdDev == 0 {
		return false, 0, ""
	}
	z := math.Abs(value-b.Mean) / b.StdDev
	if z <= cfg.ZScoreLimit {
		return false, 0, ""
	}
	return true, z, fmt.Sprintf("z-score %.2f beyond limit %.2f (mean %.2f, std dev %.2f)",
		z, cfg.ZScoreLimit, b.Mean, b.StdDev)
}
