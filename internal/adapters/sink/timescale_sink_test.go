package sink

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func TestTimescaleSinkWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "breach_events")
	ts := time.Now()

	events := []*domain.Assessment{
		{
			SensorID:       "LAB-001",
			Timestamp:      ts,
			Level:          6,
			Metrics:        []domain.Metric{domain.MetricGas, domain.MetricTemperature},
			MaxScore:       3.2,
			Label:          "Major breach",
			Recommendation: "Evacuate non-essential staff.",
		},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO breach_events (sensor_id, ts, level, metrics, max_score, label, recommendation) VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (sensor_id, ts, level) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs("LAB-001", ts, 6, sqlmock.AnyArg(), 3.2, "Major breach", "Evacuate non-essential staff.").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := sink.WriteBatch(events); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkWriteBatchNoEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "breach_events")
	if err := sink.WriteBatch(nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	sink := NewTimescaleSink(db, "breach_events")
	if sink.Name() != "timescaledb" {
		t.Fatalf("expected sink name timescaledb, got %s", sink.Name())
	}
}
