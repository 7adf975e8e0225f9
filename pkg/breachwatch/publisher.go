package breachwatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hawkmon/breachwatch/internal/adapters/observability"
	"github.com/hawkmon/breachwatch/internal/adapters/queue"
	"github.com/hawkmon/breachwatch/internal/adapters/wal"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// ErrQueueFull indicates the in-memory queue rejected the event according to policy.
var ErrQueueFull = errors.New("breachwatch: queue full")

// ErrWALFull indicates the WAL is at capacity and OnWALFull != "block".
var ErrWALFull = errors.New("breachwatch: wal full")

// PublisherConfig configures the WAL-backed publisher used by external
// detection processes.
type PublisherConfig struct {
	Policy Policy
	WAL    WALConfig
}

func (c *PublisherConfig) applyDefaults() {
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
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.OnWALFull == "" {
		c.Policy.OnWALFull = "block"
	}
	if c.WAL.Dir == "" {
		c.WAL.Dir = "./data/breachwatch-wal"
	}
}

func (c *PublisherConfig) validate() error {
	if c.WAL.Dir == "" {
		return fmt.Errorf("wal.dir is required")
	}
	if c.Policy.MaxQueueLen <= 0 {
		return fmt.Errorf("policy.max_queue_len must be > 0")
	}
	if c.Policy.MaxBatchSize <= 0 {
		return fmt.Errorf("policy.max_batch_size must be > 0")
	}
	return nil
}

// Publisher exposes the WAL → queue → sink delivery path to callers that run
// their own detection and only want durable breach-event delivery.
type Publisher struct {
	policy Policy
	wal    ports.WAL
	queue  ports.EventQueue
	obs    ports.Observability
	sink   EventBatchSink

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher wires a WAL + bounded queue + sink callback so callers can
// push breach events while reusing the durability/backpressure policies.
func NewPublisher(cfg *PublisherConfig, sink EventBatchSink) (*Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink callback is required")
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	walAdapter, err := wal.NewFileWAL(cfg.WAL.Dir)
	if err != nil {
		return nil, err
	}
	q := queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	obs := observability.NewPromObs(zap.NewNop())

	if err := replayWALIntoQueue(walAdapter, q, cfg.Policy, obs); err != nil {
		return nil, err
	}

	pub := &Publisher{
		policy: cfg.Policy,
		wal:    walAdapter,
		queue:  q,
		obs:    obs,
		sink:   sink,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go pub.runIngest()
	return pub, nil
}

// Publish appends the event to the WAL and enqueues it according to policy.
func (p *Publisher) Publish(a Assessment) error {
	event := a
	event.Metrics = append([]Metric(nil), a.Metrics...)

	if !p.waitForWALCapacity() {
		return ErrWALFull
	}

	id, err := p.wal.Append(&event)
	if err != nil {
		return err
	}

	if !p.enqueue(id, &event) {
		return ErrQueueFull
	}
	return nil
}

// Close waits for the ingest loop to exit, respecting the provided context.
func (p *Publisher) Close(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) runIngest() {
	defer close(p.doneCh)
	idle := p.policy.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		batch := p.queue.DequeueBatch(p.policy.MaxBatchSize)
		if len(batch) == 0 {
			time.Sleep(idle)
			continue
		}

		var (
			events = make([]Assessment, 0, len(batch))
			maxID  WALEntryID
		)
		for _, item := range batch {
			events = append(events, *item.Event)
			if item.ID > maxID {
				maxID = item.ID
			}
		}

		if err := p.sink(events); err != nil {
			p.obs.LogError("publisher sink failed", err)
			time.Sleep(idle)
			continue
		}

		p.obs.IncCounter("breachwatch_events_ingested_total", float64(len(events)))
		if err := p.wal.Commit(maxID); err != nil {
			p.obs.LogError("wal commit failed", err)
		}
	}
}

func (p *Publisher) waitForWALCapacity() bool {
	if p.policy.MaxWALSizeBytes <= 0 {
		return true
	}
	sleep := p.policy.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		stats := p.wal.Stats()
		if stats.SizeBytes < p.policy.MaxWALSizeBytes {
			return true
		}

		switch p.policy.OnWALFull {
		case "block":
			time.Sleep(sleep)
		default:
			return false
		}
	}
}

func (p *Publisher) enqueue(id WALEntryID, a *Assessment) bool {
	sleep := p.policy.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := p.queue.Enqueue(id, a); ok {
			return true
		}

		switch p.policy.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		default:
			return false
		}
	}
}
