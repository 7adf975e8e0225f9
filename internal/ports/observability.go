package ports

import "github.com/hawkmon/breachwatch/internal/domain"

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)
	SetGauge(name string, v float64)

	// SetMetricScore publishes the latest anomaly score for one metric.
	SetMetricScore(metric domain.Metric, score float64)

	// RecordBreach publishes the breach level of the cycle that just closed.
	RecordBreach(a *domain.Assessment)

	// RecordDeadEvent reports an assessment lost to backpressure or a
	// permanent sink failure.
	RecordDeadEvent(id WALEntryID, a *domain.Assessment, err error)
}

type Field struct {
	Key   string
	Value any
}
