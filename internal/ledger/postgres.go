// internal/ledger/postgres.go
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// PostgresLedger is a Gate backed by a shared resource_pools table, for
// deployments where several processes draw on the same pools. Consume runs in
// a transaction with row locks, so concurrent consumers serialize per
// resource and the all-or-nothing contract holds across processes.
type PostgresLedger struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresLedger creates a ledger on an open database handle.
func NewPostgresLedger(db *sql.DB, logger *zap.Logger) *PostgresLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresLedger{db: db, logger: logger}
}

// InitSchema creates the ledger tables if they do not exist.
func (l *PostgresLedger) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resource_pools (
			resource_id TEXT PRIMARY KEY,
			quantity BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS side_effect_log (
			id BIGSERIAL PRIMARY KEY,
			effect TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, query := range queries {
		if _, err := l.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create ledger table: %w", err)
		}
	}
	return nil
}

// Deposit adds quantity of a resource to the pool, creating it if needed.
func (l *PostgresLedger) Deposit(ctx context.Context, resource string, quantity int64) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO resource_pools (resource_id, quantity)
		VALUES ($1, $2)
		ON CONFLICT (resource_id)
		DO UPDATE SET quantity = resource_pools.quantity + $2, updated_at = NOW()`,
		resource, quantity)
	if err != nil {
		return fmt.Errorf("deposit %s: %w", resource, err)
	}
	return nil
}

// Balance returns the current quantity of a resource. Missing rows are zero.
func (l *PostgresLedger) Balance(ctx context.Context, resource string) (int64, error) {
	var quantity int64
	err := l.db.QueryRowContext(ctx,
		`SELECT quantity FROM resource_pools WHERE resource_id = $1`, resource).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", resource, err)
	}
	return quantity, nil
}

// HasResources checks availability without locking. It can race with other
// consumers; Consume makes the final call.
func (l *PostgresLedger) HasResources(ctx context.Context, cost Cost) bool {
	for resource, qty := range cost {
		available, err := l.Balance(ctx, resource)
		if err != nil {
			l.logger.Warn("resource availability check failed",
				zap.String("resource", resource), zap.Error(err))
			return false
		}
		if available < qty {
			return false
		}
	}
	return true
}

// Consume debits every resource in one transaction. Rows are locked in sorted
// key order so two consumes with overlapping costs cannot deadlock.
func (l *PostgresLedger) Consume(ctx context.Context, cost Cost) error {
	if cost.Empty() {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consume: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	resources := make([]string, 0, len(cost))
	for resource := range cost {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	for _, resource := range resources {
		var available int64
		err := tx.QueryRowContext(ctx,
			`SELECT quantity FROM resource_pools WHERE resource_id = $1 FOR UPDATE`,
			resource).Scan(&available)
		if err == sql.ErrNoRows {
			return fmt.Errorf("resource %s: %w", resource, ErrInsufficientResources)
		}
		if err != nil {
			return fmt.Errorf("lock resource %s: %w", resource, err)
		}
		if available < cost[resource] {
			return fmt.Errorf("resource %s has %d, need %d: %w",
				resource, available, cost[resource], ErrInsufficientResources)
		}
	}

	for _, resource := range resources {
		if _, err := tx.ExecContext(ctx,
			`UPDATE resource_pools SET quantity = quantity - $1, updated_at = NOW()
			 WHERE resource_id = $2`,
			cost[resource], resource); err != nil {
			return fmt.Errorf("debit resource %s: %w", resource, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume: %w", err)
	}
	return nil
}

// ApplySideEffects records each effect. A failed insert is reported but does
// not stop the remaining effects.
func (l *PostgresLedger) ApplySideEffects(ctx context.Context, effects []string) error {
	var firstErr error
	for _, effect := range effects {
		if _, err := l.db.ExecContext(ctx,
			`INSERT INTO side_effect_log (effect) VALUES ($1)`, effect); err != nil {
			l.logger.Warn("side effect not recorded", zap.String("effect", effect), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("record side effect %q: %w", effect, err)
			}
		}
	}
	return firstErr
}
