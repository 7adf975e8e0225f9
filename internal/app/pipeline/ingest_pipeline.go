package pipeline

import (
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// RunIngestPipeline drains queued breach events into the sink and commits
// the WAL behind them. Sink failures keep the WAL intact so the events
// replay on the next start.
func RunIngestPipeline(done <-chan struct{}, wal ports.WAL, q ports.EventQueue, sink ports.EventSink, pol ports.Policy, obs ports.Observability) {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		select {
		case <-done:
			return
		default:
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			time.Sleep(sleep)
			continue
		}

		var (
			events = make([]*domain.Assessment, 0, len(batch))
			maxID  ports.WALEntryID
		)
		for _, item := range batch {
			events = append(events, item.Event)
			if item.ID > maxID {
				maxID = item.ID
			}
		}

		start := time.Now()
		if err := sink.WriteBatch(events); err != nil {
			obs.LogError("sink write failed", err,
				ports.Field{Key: "sink", Value: sink.Name()},
				ports.Field{Key: "events", Value: len(events)})
			// keep WAL; replays later
			continue
		}
		obs.ObserveLatency("breachwatch_sink_latency_seconds", time.Since(start).Seconds())
		obs.IncCounter("breachwatch_events_ingested_total", float64(len(events)))

		if err := wal.Commit(maxID); err != nil {
			obs.LogError("wal commit failed", err)
			continue
		}
		if err := wal.TruncateCommitted(); err != nil {
			obs.LogError("wal truncate failed", err)
		}
	}
}
