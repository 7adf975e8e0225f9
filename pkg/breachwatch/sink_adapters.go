package breachwatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hawkmon/breachwatch/internal/domain"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("breachwatch: channel sink closed")

// EventBatchSink is invoked with ordered batches of breach events dequeued
// from the pipeline.
type EventBatchSink func([]Assessment) error

// NewCallbackSink adapts an EventBatchSink into a full EventSink
// implementation so callers can plug arbitrary functions without defining
// structs.
func NewCallbackSink(name string, fn EventBatchSink) EventSink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes batches via a channel; it returns the sink, the
// read-only channel, and a close function the caller should invoke during
// shutdown.
func NewChannelSink(name string, buffer int) (EventSink, <-chan []Assessment, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []Assessment, buffer)
	s := &channelSink{
		name: name,
		ch:   ch,
		stop: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   EventBatchSink
}

func (s *callbackSink) WriteBatch(events []*domain.Assessment) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(events) == 0 {
		return nil
	}
	return s.fn(copyBatch(events))
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name string
	ch   chan []Assessment
	stop chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func (s *channelSink) WriteBatch(events []*domain.Assessment) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrChannelSinkClosed
	}

	batch := copyBatch(events)

	select {
	case <-s.stop:
		return ErrChannelSinkClosed
	case s.ch <- batch:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

// close unblocks every in-flight writer before closing the batch channel,
// so a writer can never send on a closed channel.
func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.ch)
	})
}

func copyBatch(events []*domain.Assessment) []Assessment {
	if len(events) == 0 {
		return nil
	}
	out := make([]Assessment, len(events))
	for i, e := range events {
		out[i] = *e
		out[i].Metrics = append([]Metric(nil), e.Metrics...)
	}
	return out
}
