package breachwatch

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackSink(t *testing.T) {
	var received []Assessment
	snk := NewCallbackSink("cb", func(batch []Assessment) error {
		received = append(received, batch...)
		return nil
	})

	input := &Assessment{
		SensorID:  "LAB-001",
		Timestamp: time.Unix(1, 0),
		Level:     6,
		Metrics:   []Metric{MetricGas, MetricTemperature},
		MaxScore:  3.2,
	}

	if err := snk.WriteBatch([]*Assessment{input}); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 batch entry, got %d", len(received))
	}
	got := received[0]
	if got.SensorID != input.SensorID || got.Level != input.Level {
		t.Fatalf("mismatched event payload: %+v vs %+v", got, input)
	}
	if len(got.Metrics) != 2 || got.Metrics[0] != MetricGas {
		t.Fatalf("expected metric list to be copied, got %v", got.Metrics)
	}
	// The copy owns its metric slice.
	got.Metrics[0] = MetricCPUUsage
	if input.Metrics[0] != MetricGas {
		t.Fatalf("callback batch must not alias the pipeline event")
	}
}

func TestNewCallbackSinkNilHandler(t *testing.T) {
	snk := NewCallbackSink("", nil)
	if err := snk.WriteBatch([]*Assessment{{SensorID: "s"}}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
}

func TestNewChannelSink(t *testing.T) {
	snk, ch, closeFn := NewChannelSink("chan", 1)
	defer closeFn()

	input := &Assessment{SensorID: "LAB-002", Level: 3}
	errCh := make(chan error, 1)

	go func() {
		errCh <- snk.WriteBatch([]*Assessment{input})
	}()

	var batch []Assessment
	select {
	case batch = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel batch")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}
	if len(batch) != 1 || batch[0].SensorID != input.SensorID {
		t.Fatalf("unexpected batch data: %+v", batch)
	}

	closeFn()
	if err := snk.WriteBatch([]*Assessment{input}); !errors.Is(err, ErrChannelSinkClosed) {
		t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
	}
}

func TestNewChannelSinkCloseUnblocksWriter(t *testing.T) {
	snk, ch, closeFn := NewChannelSink("chan", 0)

	errCh := make(chan error, 1)
	go func() {
		errCh <- snk.WriteBatch([]*Assessment{{SensorID: "LAB-003", Level: 5}})
	}()

	// Let the writer park on the unbuffered channel before closing.
	time.Sleep(10 * time.Millisecond)
	closeFn()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrChannelSinkClosed) {
			t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("writer still blocked after close")
	}

	if _, ok := <-ch; ok {
		t.Fatal("expected batch channel to be closed for consumers")
	}
}
