package wal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

func TestFileWALAppendIterateAndReplay(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFileWAL(dir)
	if err != nil {
		t.Fatalf("new wal: %v", err)
	}

	e1 := &domain.Assessment{SensorID: "LAB-001", Level: 4,
		Metrics: []domain.Metric{domain.MetricGas}, Timestamp: time.Now().UTC()}
	e2 := &domain.Assessment{SensorID: "LAB-001", Level: 8,
		Metrics: []domain.Metric{domain.MetricGas, domain.MetricTemperature}}

	id1, err := w.Append(e1)
	if err != nil || id1 == 0 {
		t.Fatalf("append event 1: %v id=%d", err, id1)
	}
	id2, err := w.Append(e2)
	if err != nil || id2 == 0 {
		t.Fatalf("append event 2: %v id=%d", err, id2)
	}

	var levels []int
	if err := w.Iterate(1, func(id ports.WALEntryID, e *domain.Assessment) error {
		levels = append(levels, e.Level)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(levels) != 2 || levels[0] != 4 || levels[1] != 8 {
		t.Fatalf("unexpected iterated levels: %v", levels)
	}

	if err := w.Commit(id1); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := w.file.Close(); err != nil {
		t.Fatalf("close wal: %v", err)
	}

	// Reopen: committed watermark persisted, uncommitted entry replayable.
	w2, err := NewFileWAL(dir)
	if err != nil {
		t.Fatalf("reopen wal: %v", err)
	}
	defer w2.file.Close()

	stats := w2.Stats()
	if stats.LatestAppended != id2 {
		t.Fatalf("expected latest appended %d, got %d", id2, stats.LatestAppended)
	}
	if stats.OldestUncommitted != id1+1 {
		t.Fatalf("expected oldest uncommitted %d, got %d", id1+1, stats.OldestUncommitted)
	}

	var replayed []ports.WALEntryID
	if err := w2.Iterate(stats.OldestUncommitted, func(id ports.WALEntryID, e *domain.Assessment) error {
		replayed = append(replayed, id)
		if e.Level != 8 {
			t.Fatalf("expected replayed level 8, got %d", e.Level)
		}
		return nil
	}); err != nil {
		t.Fatalf("replay iterate: %v", err)
	}
	if len(replayed) != 1 || replayed[0] != id2 {
		t.Fatalf("unexpected replay set: %v", replayed)
	}
}

func TestFileWALTruncatesPartialTail(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFileWAL(dir)
	if err != nil {
		t.Fatalf("new wal: %v", err)
	}
	if _, err := w.Append(&domain.Assessment{Level: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := w.file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Simulate a crash mid-write.
	f, err := os.OpenFile(filepath.Join(dir, "events.log"), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.Write([]byte{0xFF, 0xAA, 0x01}); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	f.Close()

	w2, err := NewFileWAL(dir)
	if err != nil {
		t.Fatalf("reopen after garbage: %v", err)
	}
	defer w2.file.Close()

	if got := w2.Stats().LatestAppended; got != 1 {
		t.Fatalf("expected latest appended 1 after truncation, got %d", got)
	}

	count := 0
	if err := w2.Iterate(1, func(ports.WALEntryID, *domain.Assessment) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("iterate after truncation: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 intact entry, got %d", count)
	}
}

func TestFileWALTruncateCommitted(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFileWAL(dir)
	if err != nil {
		t.Fatalf("new wal: %v", err)
	}

	id, err := w.Append(&domain.Assessment{Level: 3})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// Not fully committed yet: truncate must be a no-op.
	if err := w.TruncateCommitted(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if w.Stats().SizeBytes == 0 {
		t.Fatalf("uncommitted entries must survive truncation")
	}

	if err := w.Commit(id); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := w.TruncateCommitted(); err != nil {
		t.Fatalf("truncate committed: %v", err)
	}
	if got := w.Stats().SizeBytes; got != 0 {
		t.Fatalf("expected empty log after truncation, got %d bytes", got)
	}
}
