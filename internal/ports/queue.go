package ports

import "github.com/hawkmon/breachwatch/internal/domain"

type QueuedEvent struct {
	ID    WALEntryID
	Event *domain.Assessment
}

// EventQueue is the bounded FIFO buffer between the monitor loop and the
// event sink.
type EventQueue interface {
	Enqueue(id WALEntryID, e *domain.Assessment) bool
	DequeueBatch(max int) []QueuedEvent
	Len() int
}
