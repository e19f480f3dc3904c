package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"autism-diet-planner/internal/shared"
)

// timeLayout keeps timestamps sortable as text and readable by strftime.
const timeLayout = "2006-01-02 15:04:05"

// UsageMetric records metadata for a single generate attempt.
type UsageMetric struct {
	Provider         string
	Model            string
	Outcome          string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m UsageMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_metrics (provider, model, outcome, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Provider, m.Model, m.Outcome, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.GenerationMeta.
func (s *Store) RecordMeta(ctx context.Context, meta shared.GenerationMeta) error {
	return s.Record(ctx, MapMeta(meta))
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	Fallbacks       int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', timestamp) AS day,
		       COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		FROM usage_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`,
		OutcomeFallback, since.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var day sql.NullString
		var u DailyUsage
		if err := rows.Scan(&day, &u.TotalExecution, &u.TotalPrompt, &u.TotalCompletion, &u.Fallbacks); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM usage_metrics WHERE timestamp < ?`, threshold.Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up usage metrics: %w", err)
	}
	return res.RowsAffected()
}

// MapMeta converts a shared.GenerationMeta to a UsageMetric.
func MapMeta(meta shared.GenerationMeta) UsageMetric {
	return UsageMetric{
		Provider:         meta.Provider,
		Model:            meta.Usage.Model,
		Outcome:          meta.Outcome,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		LatencyMS:        meta.Latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
