package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// Range describes the generation band for one metric: values are drawn
// from the normal band most of the time and from the anomaly band with
// AnomalyProbability per reading.
type Range struct {
	Unit       string  `yaml:"unit"`
	NormalMin  float64 `yaml:"normal_min"`
	NormalMax  float64 `yaml:"normal_max"`
	AnomalyMin float64 `yaml:"anomaly_min"`
	AnomalyMax float64 `yaml:"anomaly_max"`
}

// Config captures the runtime details of the lab sensor simulator.
type Config struct {
	SensorID           string                  `yaml:"sensor_id"`
	Interval           time.Duration           `yaml:"interval"`
	AnomalyProbability float64                 `yaml:"anomaly_probability"`
	Ranges             map[domain.Metric]Range `yaml:"ranges"`
	Seed               int64                   `yaml:"seed"`
}

func (c *Config) ApplyDefaults() {
	if c.SensorID == "" {
		c.SensorID = "LAB-001"
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.AnomalyProbability == 0 {
		c.AnomalyProbability = 0.04
	}
	if len(c.Ranges) == 0 {
		c.Ranges = map[domain.Metric]Range{
			domain.MetricTemperature: {Unit: "°C", NormalMin: 18, NormalMax: 28, AnomalyMin: -10, AnomalyMax: 60},
			domain.MetricGas:         {Unit: "ppm", NormalMin: 0, NormalMax: 50, AnomalyMin: 100, AnomalyMax: 500},
			domain.MetricVibration:   {Unit: "mm/s", NormalMin: 0, NormalMax: 2.5, AnomalyMin: 8, AnomalyMax: 20},
			domain.MetricCPUUsage:    {Unit: "%", NormalMin: 5, NormalMax: 70, AnomalyMin: 95, AnomalyMax: 100},
		}
	}
}

func (c *Config) Validate() error {
	if c.AnomalyProbability < 0 || c.AnomalyProbability > 1 {
		return fmt.Errorf("anomaly_probability must be in [0, 1], got %f", c.AnomalyProbability)
	}
	for m, r := range c.Ranges {
		if r.NormalMin > r.NormalMax || r.AnomalyMin > r.AnomalyMax {
			return fmt.Errorf("metric %s: inverted generation range", m)
		}
	}
	return nil
}

// Simulator emits one reading per configured metric per cycle, on a fixed
// interval. It stands in for real station hardware during development and
// load testing.
type Simulator struct {
	cfg Config
	rng *rand.Rand

	mu      sync.Mutex
	seq     uint64
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func New(cfg Config) (*Simulator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *Simulator) Start(out chan<- *domain.Reading) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("simulator already started")
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.emitCycle(out)
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.emitCycle(out)
			}
		}
	}()
	return nil
}

func (s *Simulator) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// EmitCycle generates one synchronized round of readings immediately,
// bypassing the ticker. Used by tests and by callers driving their own
// schedule.
func (s *Simulator) EmitCycle(out chan<- *domain.Reading) {
	s.emitCycle(out)
}

func (s *Simulator) emitCycle(out chan<- *domain.Reading) {
	s.mu.Lock()
	stop := s.stopCh
	s.mu.Unlock()

	now := time.Now().UTC()
	seq := s.nextSeq()

	for _, m := range domain.AllMetrics() {
		r, ok := s.cfg.Ranges[m]
		if !ok {
			continue
		}
		reading := &domain.Reading{
			SensorID:  s.cfg.SensorID,
			Metric:    m,
			Value:     s.draw(r),
			Unit:      r.Unit,
			Seq:       seq,
			Timestamp: now,
		}
		select {
		case <-stop:
			return
		case out <- reading:
		}
	}
}

func (s *Simulator) draw(r Range) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng.Float64() < s.cfg.AnomalyProbability {
		return r.AnomalyMin + s.rng.Float64()*(r.AnomalyMax-r.AnomalyMin)
	}
	return r.NormalMin + s.rng.Float64()*(r.NormalMax-r.NormalMin)
}

func (s *Simulator) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

var _ ports.Source = (*Simulator)(nil)
