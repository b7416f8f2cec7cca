package metrics

import (
	"context"
	"database/sql"
	"time"
)

// DispatchMetric records metadata for a single digest delivery.
type DispatchMetric struct {
	Channel    string
	Trigger    string
	Recipients int
	Success    bool
	Error      string
	LatencyMS  int64
	Timestamp  time.Time
}

// Delivery channels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m DispatchMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatch_metrics (channel, trigger_mode, recipients, success, error, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Channel, m.Trigger, m.Recipients, m.Success, m.Error, m.LatencyMS, ts.UTC().Format(time.RFC3339))
	return err
}

// DailyUsage aggregates deliveries for a single day.
type DailyUsage struct {
	Date       string `json:"date"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Recipients int    `json:"recipients"`
	AvgLatency int64  `json:"avgLatencyMs"`
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END),
		       SUM(CASE WHEN success THEN 0 ELSE 1 END),
		       SUM(CASE WHEN success THEN recipients ELSE 0 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM dispatch_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Sent, &u.Failed, &u.Recipients, &u.AvgLatency); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM dispatch_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
