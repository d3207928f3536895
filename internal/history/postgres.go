// internal/history/postgres.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FairForge/wardkeeper/internal/fault"
	"go.uber.org/zap"
)

// PostgresSink mirrors fault records into a fault_log table. Record upserts
// by fault id, so the row always reflects the latest state the Log pushed.
type PostgresSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSink creates a sink on an open database handle.
func NewPostgresSink(db *sql.DB, logger *zap.Logger) *PostgresSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSink{db: db, logger: logger}
}

// InitSchema creates the audit table if it does not exist.
func (s *PostgresSink) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fault_log (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			context JSONB,
			handled BOOLEAN NOT NULL DEFAULT FALSE,
			state TEXT NOT NULL,
			attempt INT NOT NULL DEFAULT 0,
			resolution JSONB,
			escalated_from TEXT,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fault_log_created_at ON fault_log(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_fault_log_category ON fault_log(category)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create fault_log: %w", err)
		}
	}
	return nil
}

// Record implements Sink.
func (s *PostgresSink) Record(ctx context.Context, rec fault.Record) error {
	var contextJSON, resolutionJSON []byte
	var err error
	if rec.Context != nil {
		if contextJSON, err = json.Marshal(rec.Context); err != nil {
			return fmt.Errorf("marshal fault context: %w", err)
		}
	}
	if rec.Resolution != nil {
		if resolutionJSON, err = json.Marshal(rec.Resolution); err != nil {
			return fmt.Errorf("marshal fault resolution: %w", err)
		}
	}

	var escalatedFrom sql.NullString
	if rec.EscalatedFrom != "" {
		escalatedFrom = sql.NullString{String: rec.EscalatedFrom, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fault_log
			(id, created_at, category, severity, message, context, handled, state, attempt, resolution, escalated_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			handled = EXCLUDED.handled,
			state = EXCLUDED.state,
			attempt = EXCLUDED.attempt,
			resolution = EXCLUDED.resolution,
			recorded_at = NOW()`,
		rec.ID, rec.CreatedAt, rec.Category.String(), rec.Severity.String(), rec.Message,
		nullableJSON(contextJSON), rec.Handled, string(rec.State), rec.Attempt,
		nullableJSON(resolutionJSON), escalatedFrom)
	if err != nil {
		return fmt.Errorf("record fault %s: %w", rec.ID, err)
	}
	return nil
}

// Recent reads back the most recent records, newest first.
func (s *PostgresSink) Recent(ctx context.Context, limit int) ([]fault.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, category, severity, message, context, handled, state, attempt, resolution, escalated_from
		FROM fault_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fault_log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []fault.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fault_log: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (fault.Record, error) {
	var rec fault.Record
	var category, severity, state string
	var contextJSON, resolutionJSON []byte
	var escalatedFrom sql.NullString

	err := rows.Scan(&rec.ID, &rec.CreatedAt, &category, &severity, &rec.Message,
		&contextJSON, &rec.Handled, &state, &rec.Attempt, &resolutionJSON, &escalatedFrom)
	if err != nil {
		return rec, fmt.Errorf("scan fault_log row: %w", err)
	}

	rec.Category = fault.Category(category)
	rec.State = fault.State(state)
	if rec.Severity, err = fault.ParseSeverity(severity); err != nil {
		return rec, fmt.Errorf("scan fault_log row: %w", err)
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &rec.Context); err != nil {
			return rec, fmt.Errorf("decode fault context: %w", err)
		}
	}
	if len(resolutionJSON) > 0 {
		rec.Resolution = &fault.Resolution{}
		if err := json.Unmarshal(resolutionJSON, rec.Resolution); err != nil {
			return rec, fmt.Errorf("decode fault resolution: %w", err)
		}
	}
	if escalatedFrom.Valid {
		rec.EscalatedFrom = escalatedFrom.String
	}
	return rec, nil
}

// nullableJSON keeps empty documents as SQL NULL instead of the string "null".
func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return data
}
