package breachwatch

import (
	"github.com/hawkmon/breachwatch/internal/adapters/alert"
	"github.com/hawkmon/breachwatch/internal/adapters/calibrate"
	"github.com/hawkmon/breachwatch/internal/adapters/opcua"
	"github.com/hawkmon/breachwatch/internal/adapters/simulator"
	"github.com/hawkmon/breachwatch/internal/app/config"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls WAL/queue/cycle thresholds.
	Policy = ports.Policy
	// StationConfig names the monitored station.
	StationConfig = config.StationConfig
	// DetectorConfig holds window size and per-metric thresholds.
	DetectorConfig = config.DetectorConfig
	// SimulatorConfig configures the lab sensor simulator source.
	SimulatorConfig = simulator.Config
	// SimulatorRange is the per-metric generation band.
	SimulatorRange = simulator.Range
	// OPCUAConfig holds connection + node details for the OPC UA source.
	OPCUAConfig = opcua.Config
	// OPCUANodeConfig binds a monitored node to a metric.
	OPCUANodeConfig = opcua.NodeConfig
	// CalibrationConfig holds the per-metric linear corrections.
	CalibrationConfig = calibrate.Config
	// EventsConfig configures the breach-event sink.
	EventsConfig = config.EventsConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// WALConfig configures on-disk durability.
	WALConfig = config.WALConfig
	// AlertsConfig configures the voice alerter.
	AlertsConfig = alert.Config
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
