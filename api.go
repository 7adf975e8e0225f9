package breachwatch

import (
	base "github.com/hawkmon/breachwatch/pkg/breachwatch"
)

// Re-exported errors for convenience.
var (
	ErrQueueFull         = base.ErrQueueFull
	ErrWALFull           = base.ErrWALFull
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/hawkmon/breachwatch directly.
type (
	Config            = base.Config
	Policy            = base.Policy
	StationConfig     = base.StationConfig
	DetectorConfig    = base.DetectorConfig
	SimulatorConfig   = base.SimulatorConfig
	SimulatorRange    = base.SimulatorRange
	OPCUAConfig       = base.OPCUAConfig
	OPCUANodeConfig   = base.OPCUANodeConfig
	CalibrationConfig = base.CalibrationConfig
	EventsConfig      = base.EventsConfig
	MetricsConfig     = base.MetricsConfig
	WALConfig         = base.WALConfig
	AlertsConfig      = base.AlertsConfig
	Flow              = base.Flow
	FlowOption        = base.FlowOption
	StreamInOption    = base.StreamInOption
	StreamOutOption   = base.StreamOutOption
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	Metric            = base.Metric
	Reading           = base.Reading
	Baseline          = base.Baseline
	Verdict           = base.Verdict
	Assessment        = base.Assessment
	Method            = base.Method
	Engine            = base.Engine
	MetricConfig      = base.MetricConfig
	CorrelatorConfig  = base.CorrelatorConfig
	EventBatchSink    = base.EventBatchSink
	Source            = base.Source
	EventSink         = base.EventSink
	EventQueue        = base.EventQueue
	QueuedEvent       = base.QueuedEvent
	Calibrator        = base.Calibrator
	Narrator          = base.Narrator
	Alerter           = base.Alerter
	WAL               = base.WAL
	Observability     = base.Observability
	Field             = base.Field
	WALEntryID        = base.WALEntryID
	WALStats          = base.WALStats
	Publisher         = base.Publisher
	PublisherConfig   = base.PublisherConfig
)

// Monitored metrics and detection methods.
const (
	MetricTemperature = base.MetricTemperature
	MetricGas         = base.MetricGas
	MetricVibration   = base.MetricVibration
	MetricCPUUsage    = base.MetricCPUUsage

	MethodNone      = base.MethodNone
	MethodThreshold = base.MethodThreshold
	MethodZScore    = base.MethodZScore
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInSource(src Source) StreamInOption {
	return base.StreamInSource(src)
}

func StreamInQueue(q EventQueue) StreamInOption {
	return base.StreamInQueue(q)
}

func StreamInWAL(w WAL) StreamInOption {
	return base.StreamInWAL(w)
}

func StreamInCalibrator(c Calibrator) StreamInOption {
	return base.StreamInCalibrator(c)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s EventSink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutNarrator(n Narrator) StreamOutOption {
	return base.StreamOutNarrator(n)
}

func StreamOutAlerter(a Alerter) StreamOutOption {
	return base.StreamOutAlerter(a)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn EventBatchSink) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithSource(src Source) RuntimeOption {
	return base.WithSource(src)
}

func WithEventSink(s EventSink) RuntimeOption {
	return base.WithEventSink(s)
}

func WithCalibrator(c Calibrator) RuntimeOption {
	return base.WithCalibrator(c)
}

func WithNarrator(n Narrator) RuntimeOption {
	return base.WithNarrator(n)
}

func WithAlerter(a Alerter) RuntimeOption {
	return base.WithAlerter(a)
}

func WithWAL(w WAL) RuntimeOption {
	return base.WithWAL(w)
}

func WithEventQueue(q EventQueue) RuntimeOption {
	return base.WithEventQueue(q)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackSink(name string, fn EventBatchSink) EventSink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (EventSink, <-chan []Assessment, func()) {
	return base.NewChannelSink(name, buffer)
}

// Durable publisher for external detectors.
func NewPublisher(cfg *PublisherConfig, sink EventBatchSink) (*Publisher, error) {
	return base.NewPublisher(cfg, sink)
}
