package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/hawkmon/breachwatch/internal/domain"
)

// Registry owns every rolling window, keyed by (sensor, metric). Windows
// are created lazily on first update and live for the registry's lifetime.
// Each window has its own lock, so updates for different keys may run in
// parallel while any single key stays single-writer.
type Registry struct {
	mu       sync.Mutex
	capacity int
	windows  map[windowKey]*RollingWindow
}

type windowKey struct {
	sensor string
	metric domain.Metric
}

func NewRegistry(capacity int) *Registry {
	if capacity < 2 {
		capacity = 2
	}
	return &Registry{
		capacity: capacity,
		windows:  make(map[windowKey]*RollingWindow),
	}
}

// Update appends value to the window for (sensorID, metric) and returns the
// refreshed baseline. A non-finite value is rejected with ErrInvalidReading
// and does not mutate the window.
func (r *Registry) Update(sensorID string, metric domain.Metric, value float64) (domain.Baseline, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.Baseline{}, fmt.Errorf("%s/%s value %v: %w", sensorID, metric, value, ErrInvalidReading)
	}
	return r.window(sensorID, metric).push(value), nil
}

// Baseline reports the current statistics for a key without mutating it.
// The second return is false when the key has never been updated.
func (r *Registry) Baseline(sensorID string, metric domain.Metric) (domain.Baseline, bool) {
	r.mu.Lock()
	w, ok := r.windows[windowKey{sensorID, metric}]
	r.mu.Unlock()
	if !ok {
		return domain.Baseline{}, false
	}
	return w.baseline(), true
}

// Reset drops every window. Intended for test isolation and session restarts.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = make(map[windowKey]*RollingWindow)
}

func (r *Registry) window(sensorID string, metric domain.Metric) *RollingWindow {
	key := windowKey{sensorID, metric}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[key]
	if !ok {
		w = newRollingWindow(r.capacity)
		r.windows[key] = w
	}
	return w
}

// RollingWindow keeps the most recent N values for one (sensor, metric)
// pair in a ring buffer. Statistics are recomputed over the full window on
// each push so they always match the current contents.
type RollingWindow struct {
	mu     sync.Mutex
	values []float64
	pos    int
	count  int
}

func newRollingWindow(capacity int) *RollingWindow {
	return &RollingWindow{values: make([]float64, capacity)}
}

func (w *RollingWindow) push(v float64) domain.Baseline {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.values[w.pos] = v
	w.pos = (w.pos + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
	return w.baselineLocked()
}

func (w *RollingWindow) baseline() domain.Baseline {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baselineLocked()
}

func (w *RollingWindow) baselineLocked() domain.Baseline {
	b := domain.Baseline{SampleCount: w.count}
	if w.count == 0 {
		return b
	}

	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.values[i]
	}
	b.Mean = sum / float64(w.count)

	// Sample standard deviation; a single observation has no spread.
	if w.count > 1 {
		var sq float64
		for i := 0; i < w.count; i++ {
			d := w.values[i] - b.Mean
			sq += d * d
		}
		b.StdDev = math.Sqrt(sq / float64(w.count-1))
	}
	return b
}
