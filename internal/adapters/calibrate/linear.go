package calibrate

import (
	"fmt"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// Adjustment is a per-metric linear correction applied to raw values:
// calibrated = raw*scale + offset.
type Adjustment struct {
	Scale  float64 `yaml:"scale"`
	Offset float64 `yaml:"offset"`
}

type Config struct {
	Version     uint16                       `yaml:"version"`
	Adjustments map[domain.Metric]Adjustment `yaml:"adjustments"`
}

func (c *Config) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	for m, a := range c.Adjustments {
		if a.Scale == 0 {
			a.Scale = 1
			c.Adjustments[m] = a
		}
	}
}

func (c *Config) Validate() error {
	for m, a := range c.Adjustments {
		if a.Scale <= 0 {
			return fmt.Errorf("metric %s: scale must be positive, got %f", m, a.Scale)
		}
	}
	return nil
}

// Linear corrects sensor drift with a per-metric scale and offset. Metrics
// without an adjustment pass through unchanged.
type Linear struct {
	cfg Config
}

func New(cfg Config) (*Linear, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Linear{cfg: cfg}, nil
}

// Identity returns a calibrator that leaves every reading untouched.
func Identity() *Linear {
	return &Linear{cfg: Config{Version: 1}}
}

func (l *Linear) Calibrate(r *domain.Reading) (*domain.Reading, error) {
	if r == nil {
		return nil, fmt.Errorf("nil reading")
	}
	a, ok := l.cfg.Adjustments[r.Metric]
	if !ok {
		return r, nil
	}
	out := *r
	out.Value = r.Value*a.Scale + a.Offset
	return &out, nil
}

func (l *Linear) Version() uint16 { return l.cfg.Version }

var _ ports.Calibrator = (*Linear)(nil)
