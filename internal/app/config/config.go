package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hawkmon/breachwatch/internal/adapters/alert"
	"github.com/hawkmon/breachwatch/internal/adapters/calibrate"
	"github.com/hawkmon/breachwatch/internal/adapters/opcua"
	"github.com/hawkmon/breachwatch/internal/adapters/simulator"
	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/engine"
	"github.com/hawkmon/breachwatch/internal/ports"
)

const (
	SourceSimulator = "simulator"
	SourceOPCUA     = "opcua"
)

type Config struct {
	Station     StationConfig           `yaml:"station"`
	Policy      ports.Policy            `yaml:"policy"`
	Source      SourceConfig            `yaml:"source"`
	Simulator   simulator.Config        `yaml:"simulator"`
	OPCUA       opcua.Config            `yaml:"opcua"`
	Detector    DetectorConfig          `yaml:"detector"`
	Correlator  engine.CorrelatorConfig `yaml:"correlator"`
	Calibration calibrate.Config        `yaml:"calibration"`
	Events      EventsConfig            `yaml:"events"`
	Metrics     MetricsConfig           `yaml:"metrics"`
	WAL         WALConfig               `yaml:"wal"`
	Alerts      alert.Config            `yaml:"alerts"`
}

type StationConfig struct {
	SensorID string `yaml:"sensor_id"`
	Location string `yaml:"location"`
}

type SourceConfig struct {
	Kind string `yaml:"kind"` // "simulator", "opcua"
}

type DetectorConfig struct {
	WindowSize int                                   `yaml:"window_size"`
	Metrics    map[domain.Metric]engine.MetricConfig `yaml:"metrics"`
}

type EventsConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type WALConfig struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default detects with the original station thresholds.
func defaultMetricConfigs() map[domain.Metric]engine.MetricConfig {
	return map[domain.Metric]engine.MetricConfig{
		domain.MetricTemperature: {Low: 15, High: 32, ZScoreLimit: 2.5, Mode: engine.ModeBoth, Unit: "°C", Critical: true},
		domain.MetricGas:         {Low: 0, High: 75, ZScoreLimit: 2.5, Mode: engine.ModeBoth, Unit: "ppm", Critical: true},
		domain.MetricVibration:   {Low: 0, High: 4, ZScoreLimit: 2.5, Mode: engine.ModeBoth, Unit: "mm/s"},
		domain.MetricCPUUsage:    {Low: 0, High: 85, ZScoreLimit: 2.5, Mode: engine.ModeBoth, Unit: "%"},
	}
}

func (c *Config) ApplyDefaults() {
	if c.Station.SensorID == "" {
		c.Station.SensorID = "LAB-001"
	}
	if c.Station.Location == "" {
		c.Station.Location = "Lab-A"
	}

	if c.Policy.MaxWALSizeBytes == 0 {
		c.Policy.MaxWALSizeBytes = 1 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 10_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 500
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.CycleTimeout == 0 {
		c.Policy.CycleTimeout = 30 * time.Second
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.OnWALFull == "" {
		c.Policy.OnWALFull = "block"
	}
	if c.Policy.OnPartialCycle == "" {
		c.Policy.OnPartialCycle = "correlate"
	}

	if c.Source.Kind == "" {
		c.Source.Kind = SourceSimulator
	}

	if c.Detector.WindowSize == 0 {
		c.Detector.WindowSize = 50
	}
	if len(c.Detector.Metrics) == 0 {
		c.Detector.Metrics = defaultMetricConfigs()
	} else {
		for m, mc := range c.Detector.Metrics {
			if mc.Mode == "" {
				mc.Mode = engine.ModeBoth
			}
			if mc.ZScoreLimit == 0 {
				mc.ZScoreLimit = 2.5
			}
			c.Detector.Metrics[m] = mc
		}
	}

	if c.Correlator.BaseWeight == 0 {
		c.Correlator = engine.DefaultCorrelatorConfig()
	}

	if c.Events.Table == "" {
		c.Events.Table = "breach_events"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.WAL.Dir == "" {
		c.WAL.Dir = "./data/wal"
	}
	if c.Alerts.Timeout == 0 {
		c.Alerts.Timeout = 10 * time.Second
	}

	if c.Simulator.SensorID == "" {
		c.Simulator.SensorID = c.Station.SensorID
	}
	c.Simulator.ApplyDefaults()
	c.Calibration.ApplyDefaults()
	if c.Source.Kind == SourceOPCUA {
		c.OPCUA.ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSimulator:
		if err := c.Simulator.Validate(); err != nil {
			return fmt.Errorf("simulator config: %w", err)
		}
	case SourceOPCUA:
		if err := c.OPCUA.Validate(); err != nil {
			return fmt.Errorf("opcua config: %w", err)
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q",
			SourceSimulator, SourceOPCUA, c.Source.Kind)
	}

	if c.Detector.WindowSize < 2 || c.Detector.WindowSize > 4096 {
		return fmt.Errorf("detector.window_size must be in [2, 4096], got %d", c.Detector.WindowSize)
	}
	known := map[domain.Metric]bool{}
	for _, m := range domain.AllMetrics() {
		known[m] = true
	}
	for m, mc := range c.Detector.Metrics {
		if !known[m] {
			return fmt.Errorf("detector.metrics: unknown metric %q", m)
		}
		if err := mc.Validate(); err != nil {
			return fmt.Errorf("detector.metrics.%s: %w", m, err)
		}
	}
	if err := c.Correlator.Validate(); err != nil {
		return fmt.Errorf("correlator config: %w", err)
	}
	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("calibration config: %w", err)
	}

	switch c.Policy.OnPartialCycle {
	case "correlate", "skip":
	default:
		return fmt.Errorf("policy.on_partial_cycle must be \"correlate\" or \"skip\", got %q",
			c.Policy.OnPartialCycle)
	}

	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.WAL.Dir == "" {
		return fmt.Errorf("wal.dir is required")
	}
	return nil
}

// NewEngine builds the detection engine from the loaded settings.
func (c *Config) NewEngine() (*engine.Engine, error) {
	return engine.New(c.Detector.WindowSize, c.Detector.Metrics, c.Correlator)
}
