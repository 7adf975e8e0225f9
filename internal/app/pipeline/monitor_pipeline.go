package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/engine"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// Monitor wires the dependencies of the detection pipeline: readings flow
// source → calibrator → engine, and assessed breaches flow WAL → queue
// toward the ingest pipeline.
type Monitor struct {
	Source     ports.Source
	Engine     *engine.Engine
	Calibrator ports.Calibrator
	WAL        ports.WAL
	Queue      ports.EventQueue
	Narrator   ports.Narrator
	Alerter    ports.Alerter
	Policy     ports.Policy
	Obs        ports.Observability
}

// RunMonitorPipeline starts the source and launches the cycle loop. It
// returns immediately; the loop exits when ctx is cancelled.
func RunMonitorPipeline(ctx context.Context, m Monitor) error {
	buf := m.Policy.MaxQueueLen
	if buf <= 0 {
		buf = 64
	}
	ch := make(chan *domain.Reading, buf)

	if err := m.Source.Start(ch); err != nil {
		return err
	}

	go m.loop(ctx, ch)
	return nil
}

// loop assembles readings into cycles: one reading per configured metric,
// or whatever arrived when the cycle timeout fires.
func (m Monitor) loop(ctx context.Context, ch <-chan *domain.Reading) {
	configured := make(map[domain.Metric]bool)
	for _, metric := range m.Engine.Metrics() {
		configured[metric] = true
	}

	timeout := m.Policy.CycleTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pending := make(map[domain.Metric]*domain.Reading, len(configured))
	timer := time.NewTimer(timeout)
	timer.Stop()

	closeCycle := func() {
		if len(pending) == 0 {
			return
		}
		readings := make([]*domain.Reading, 0, len(pending))
		for _, r := range pending {
			readings = append(readings, r)
		}
		pending = make(map[domain.Metric]*domain.Reading, len(configured))
		timer.Stop()
		m.runCycle(readings)
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			closeCycle()
		case r := <-ch:
			if r == nil {
				continue
			}
			if !configured[r.Metric] {
				m.Obs.LogError("reading for unconfigured metric",
					fmt.Errorf("metric %s", r.Metric),
					ports.Field{Key: "sensor_id", Value: r.SensorID})
				continue
			}
			if m.Calibrator != nil {
				cal, err := m.Calibrator.Calibrate(r)
				if err != nil {
					m.Obs.LogError("calibration failed", err,
						ports.Field{Key: "metric", Value: string(r.Metric)})
					continue
				}
				r = cal
			}
			if len(pending) == 0 {
				timer.Reset(timeout)
			}
			pending[r.Metric] = r
			if len(pending) == len(configured) {
				closeCycle()
			}
		}
	}
}

func (m Monitor) runCycle(readings []*domain.Reading) {
	a, verdicts, err := m.Engine.RunCycle(readings)

	m.Obs.IncCounter("breachwatch_readings_total", float64(len(verdicts)))
	if invalid := len(readings) - len(verdicts); invalid > 0 {
		m.Obs.IncCounter("breachwatch_invalid_readings_total", float64(invalid))
	}

	if err != nil {
		if errors.Is(err, engine.ErrInvalidReading) {
			m.Obs.LogError("invalid readings in cycle", err,
				ports.Field{Key: "sensor_id", Value: a.SensorID})
		}
		if errors.Is(err, engine.ErrIncompleteCycle) {
			m.Obs.IncCounter("breachwatch_degraded_cycles_total", 1)
			m.Obs.LogError("partial cycle", err,
				ports.Field{Key: "sensor_id", Value: a.SensorID},
				ports.Field{Key: "verdicts", Value: len(verdicts)})
			if m.Policy.OnPartialCycle == "skip" {
				return
			}
		}
	}

	for _, v := range verdicts {
		m.Obs.SetMetricScore(v.Metric, v.Score)
		if v.Anomalous {
			m.Obs.IncCounter("breachwatch_anomalies_total", 1)
		}
	}
	m.Obs.RecordBreach(&a)

	if a.Level < 1 {
		return
	}

	if m.Narrator != nil {
		m.Obs.LogInfo("breach narrative",
			ports.Field{Key: "sensor_id", Value: a.SensorID},
			ports.Field{Key: "level", Value: a.Level},
			ports.Field{Key: "story", Value: m.Narrator.Explain(&a, verdicts)})
	}
	if m.Alerter != nil {
		if err := m.Alerter.Announce(&a); err != nil {
			m.Obs.LogError("voice alert failed", err)
		}
	}

	m.persist(&a)
}

// persist makes the breach durable before handing it to the ingest side.
func (m Monitor) persist(a *domain.Assessment) {
	if m.WAL == nil || m.Queue == nil {
		return
	}

	if !waitForWALCapacity(m.WAL, m.Policy, m.Obs) {
		m.Obs.RecordDeadEvent(0, a, fmt.Errorf("wal full"))
		return
	}

	id, err := m.WAL.Append(a)
	if err != nil {
		m.Obs.LogCritical("wal append failed", err)
		return
	}

	if !enqueueWithPolicy(m.Queue, id, a, m.Policy, m.Obs) {
		m.Obs.IncCounter("breachwatch_queue_dropped_total", 1)
		m.Obs.RecordDeadEvent(id, a, fmt.Errorf("queue full"))
	}
}

func waitForWALCapacity(wal ports.WAL, pol ports.Policy, obs ports.Observability) bool {
	if pol.MaxWALSizeBytes <= 0 {
		return true
	}
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		stats := wal.Stats()
		if stats.SizeBytes < pol.MaxWALSizeBytes {
			return true
		}

		switch pol.OnWALFull {
		case "block":
			time.Sleep(sleep)
		case "drop":
			obs.LogError("wal full, dropping event",
				fmt.Errorf("size=%d limit=%d", stats.SizeBytes, pol.MaxWALSizeBytes))
			return false
		default:
			obs.LogError("invalid wal policy", fmt.Errorf("policy=%s", pol.OnWALFull))
			return false
		}
	}
}

func enqueueWithPolicy(q ports.EventQueue, id ports.WALEntryID, a *domain.Assessment, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(id, a); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		case "drop", "reject":
			obs.LogError("queue full, dropping event",
				fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen))
			return false
		default:
			obs.LogError("invalid queue policy", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}
