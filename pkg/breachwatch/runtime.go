package breachwatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hawkmon/breachwatch/internal/adapters/alert"
	"github.com/hawkmon/breachwatch/internal/adapters/calibrate"
	"github.com/hawkmon/breachwatch/internal/adapters/narrator"
	"github.com/hawkmon/breachwatch/internal/adapters/observability"
	"github.com/hawkmon/breachwatch/internal/adapters/opcua"
	"github.com/hawkmon/breachwatch/internal/adapters/queue"
	"github.com/hawkmon/breachwatch/internal/adapters/simulator"
	"github.com/hawkmon/breachwatch/internal/adapters/sink"
	"github.com/hawkmon/breachwatch/internal/adapters/wal"
	"github.com/hawkmon/breachwatch/internal/app/config"
	"github.com/hawkmon/breachwatch/internal/app/pipeline"
	"github.com/hawkmon/breachwatch/internal/engine"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	source        Source
	sink          EventSink
	calibrator    Calibrator
	narrator      Narrator
	alerter       Alerter
	wal           WAL
	queue         EventQueue
	observability Observability
}

// WithSource injects a custom reading source (MQTT, Modbus, replay files, etc.).
func WithSource(src Source) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = src
	}
}

// WithEventSink injects a custom sink so breach events can go to any store or API.
func WithEventSink(s EventSink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sink = s
	}
}

// WithCalibrator overrides the default linear calibrator.
func WithCalibrator(c Calibrator) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.calibrator = c
	}
}

// WithNarrator overrides the default template narrator.
func WithNarrator(n Narrator) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.narrator = n
	}
}

// WithAlerter overrides the default voice alerter.
func WithAlerter(a Alerter) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.alerter = a
	}
}

// WithWAL lets callers bring their own WAL implementation or reuse an existing instance.
func WithWAL(w WAL) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.wal = w
	}
}

// WithEventQueue injects a custom queue implementation.
func WithEventQueue(q EventQueue) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// Runtime wires up the source → engine → WAL → queue → sink pipeline and
// exposes simple lifecycle hooks for embedding the monitor in any Go service.
type Runtime struct {
	cfg    *Config
	policy ports.Policy
	obs    ports.Observability
	eng    *engine.Engine
	wal    ports.WAL
	queue  ports.EventQueue
	source ports.Source
	sink   ports.EventSink

	monitor pipeline.Monitor

	db           *sql.DB
	metricsSrv   *http.Server
	cancel       context.CancelFunc
	gaugeStopCh  chan struct{}
	ingestStopCh chan struct{}
	ingestDoneCh chan struct{}
}

// NewRuntime bootstraps the default adapters (simulator or OPC UA source,
// file WAL, in-memory queue, Timescale sink, Prometheus observability,
// template narrator, voice alerter). RuntimeOption values override any
// dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		obs = observability.NewPromObs(logger)
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		return nil, err
	}

	walAdapter := overrides.wal
	if walAdapter == nil {
		walAdapter, err = wal.NewFileWAL(cfg.WAL.Dir)
		if err != nil {
			return nil, err
		}
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	if err := replayWALIntoQueue(walAdapter, q, cfg.Policy, obs); err != nil {
		return nil, err
	}

	src := overrides.source
	if src == nil {
		switch cfg.Source.Kind {
		case config.SourceOPCUA:
			src, err = opcua.NewSource(cfg.OPCUA, nil)
		default:
			src, err = simulator.New(cfg.Simulator)
		}
		if err != nil {
			return nil, err
		}
	}

	var db *sql.DB
	snk := overrides.sink
	if snk == nil {
		db, err = sql.Open("postgres", cfg.Events.ConnString)
		if err != nil {
			return nil, err
		}
		snk = sink.NewTimescaleSink(db, cfg.Events.Table)
	}

	cal := overrides.calibrator
	if cal == nil {
		cal, err = calibrate.New(cfg.Calibration)
		if err != nil {
			return nil, err
		}
	}

	nar := overrides.narrator
	if nar == nil {
		nar = narrator.New(cfg.Station.Location)
	}

	al := overrides.alerter
	if al == nil {
		al = alert.New(cfg.Alerts, nil)
	}

	return &Runtime{
		cfg:    cfg,
		policy: cfg.Policy,
		obs:    obs,
		eng:    eng,
		wal:    walAdapter,
		queue:  q,
		source: src,
		sink:   snk,
		db:     db,
		monitor: pipeline.Monitor{
			Source:     src,
			Engine:     eng,
			Calibrator: cal,
			WAL:        walAdapter,
			Queue:      q,
			Narrator:   nar,
			Alerter:    al,
			Policy:     cfg.Policy,
			Obs:        obs,
		},
	}, nil
}

// Engine exposes the detection core for callers that want to query baselines
// or reset state directly.
func (r *Runtime) Engine() *Engine { return r.eng }

// Start begins the monitor + ingest pipelines and launches the observability
// stack. It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	if err := pipeline.RunMonitorPipeline(ctx, r.monitor); err != nil {
		cancel()
		return err
	}

	r.ingestStopCh = make(chan struct{})
	r.ingestDoneCh = make(chan struct{})
	// Capture both channels before launching: Shutdown clears the stop
	// field, and the goroutine must never observe that write.
	stop, done := r.ingestStopCh, r.ingestDoneCh
	go func() {
		pipeline.RunIngestPipeline(stop, r.wal, r.queue, r.sink, r.policy, r.obs)
		close(done)
	}()

	r.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the source, pipelines, metrics server, and DB connection.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.cancel != nil {
		r.cancel()
	}
	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}
	if r.ingestStopCh != nil {
		close(r.ingestStopCh)
		r.ingestStopCh = nil
		select {
		case <-r.ingestDoneCh:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.source != nil {
		if err := r.source.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	r.gaugeStopCh = make(chan struct{})
	go r.recordResourceGauges(r.gaugeStopCh, time.Second)
}

func (r *Runtime) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := r.wal.Stats()
			r.obs.SetGauge("breachwatch_wal_size_bytes", float64(stats.SizeBytes))
			r.obs.SetGauge("breachwatch_queue_length", float64(r.queue.Len()))
		}
	}
}

func replayWALIntoQueue(walAdapter ports.WAL, q ports.EventQueue, pol ports.Policy, obs ports.Observability) error {
	stats := walAdapter.Stats()
	if stats.LatestAppended == 0 {
		return nil
	}
	start := stats.OldestUncommitted
	if start == 0 || start > stats.LatestAppended {
		return nil
	}

	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	var replayed int
	err := walAdapter.Iterate(start, func(id ports.WALEntryID, a *Assessment) error {
		for {
			if q.Enqueue(id, a) {
				replayed++
				return nil
			}
			switch pol.OnQueueFull {
			case "drop", "reject":
				return fmt.Errorf("queue full during WAL replay")
			default:
				time.Sleep(sleep)
			}
		}
	})
	if err != nil {
		return err
	}
	if replayed > 0 {
		obs.LogInfo("wal replay complete",
			Field{Key: "events", Value: replayed},
			Field{Key: "from_id", Value: start})
	}
	return nil
}
