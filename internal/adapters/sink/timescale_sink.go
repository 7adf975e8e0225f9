package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// TimescaleSink writes breach events into a hypertable keyed by
// (sensor_id, ts, level) so redelivered WAL entries are deduplicated.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBatch(events []*domain.Assessment) error {
	if len(events) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (sensor_id, ts, level, metrics, max_score, label, recommendation) VALUES ")

	args := make([]any, 0, len(events)*7)
	for i, e := range events {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5, len(args)+6, len(args)+7))

		metrics := make([]string, len(e.Metrics))
		for j, m := range e.Metrics {
			metrics[j] = string(m)
		}

		args = append(args,
			e.SensorID,
			e.Timestamp,
			e.Level,
			pq.Array(metrics),
			e.MaxScore,
			e.Label,
			e.Recommendation,
		)
	}

	b.WriteString(" ON CONFLICT (sensor_id, ts, level) DO NOTHING")

	_, err := t.db.Exec(b.String(), args...)
	return err
}

var _ ports.EventSink = (*TimescaleSink)(nil)
