package ports

import "github.com/hawkmon/breachwatch/internal/domain"

// EventSink persists batches of breach assessments to a downstream system.
type EventSink interface {
	WriteBatch(events []*domain.Assessment) error
	Name() string
}
