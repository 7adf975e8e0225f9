package breachwatch

import (
	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/engine"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// Metric names one of the monitored sensor channels.
type Metric = domain.Metric

// Reading is a single raw sensor measurement flowing into the pipeline.
type Reading = domain.Reading

// Baseline is the rolling mean/std-dev state for one (sensor, metric) window.
type Baseline = domain.Baseline

// Verdict is the per-metric outcome of one detection pass.
type Verdict = domain.Verdict

// Assessment is a correlated breach event: the unit that flows through the
// WAL → queue → sink pipeline.
type Assessment = domain.Assessment

// Method identifies which rule flagged a verdict.
type Method = domain.Method

const (
	MetricTemperature = domain.MetricTemperature
	MetricGas         = domain.MetricGas
	MetricVibration   = domain.MetricVibration
	MetricCPUUsage    = domain.MetricCPUUsage

	MethodNone      = domain.MethodNone
	MethodThreshold = domain.MethodThreshold
	MethodZScore    = domain.MethodZScore
)

// Engine is the rolling-statistics + detection + correlation core.
type Engine = engine.Engine

// MetricConfig holds per-metric detection settings.
type MetricConfig = engine.MetricConfig

// CorrelatorConfig holds the severity weighting constants.
type CorrelatorConfig = engine.CorrelatorConfig

// Source streams readings from any sensor backend into the pipeline.
type Source = ports.Source

// EventSink consumes batches of breach events and persists them downstream.
type EventSink = ports.EventSink

// EventQueue is the bounded in-memory queue between detection and ingest.
type EventQueue = ports.EventQueue

// QueuedEvent is an item buffered inside the bounded queue.
type QueuedEvent = ports.QueuedEvent

// Calibrator adjusts raw readings before they reach the engine.
type Calibrator = ports.Calibrator

// Narrator renders a human-readable explanation for a breach.
type Narrator = ports.Narrator

// Alerter announces breaches out-of-band (voice, pager, etc.).
type Alerter = ports.Alerter

// Observability emits metrics and logs for the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// WAL abstracts the write-ahead log used for breach-event durability.
type WAL = ports.WAL

// WALStats exposes WAL metadata for observability.
type WALStats = ports.WALStats

// WALEntryID uniquely identifies a WAL entry.
type WALEntryID = ports.WALEntryID
