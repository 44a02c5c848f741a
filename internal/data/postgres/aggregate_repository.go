// Package postgres provides PostgreSQL implementations of the domain
// repositories. Aggregates are persisted as JSONB snapshots with a version
// column used for optimistic concurrency.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transactionprocessing/transaction-processor/internal/domain/settlement"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
	"github.com/transactionprocessing/transaction-processor/internal/platform/persistence"
)

// SnapshotRepository implements shared.AggregateRepository for PostgreSQL.
// Each aggregate type has its own snapshot table with the same shape.
type SnapshotRepository[T shared.AggregateRoot] struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
	table   string
	factory func(id uuid.UUID) T
}

// NewTransactionRepository creates a PostgreSQL transaction aggregate repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &SnapshotRepository[*transaction.Transaction]{
		querier: db.Pool(),
		logger:  logger,
		table:   "transaction_snapshots",
		factory: transaction.New,
	}
}

// NewSettlementRepository creates a PostgreSQL settlement aggregate repository
func NewSettlementRepository(logger *slog.Logger, db *persistence.PostgresDB) settlement.Repository {
	return &SnapshotRepository[*settlement.Settlement]{
		querier: db.Pool(),
		logger:  logger,
		table:   "settlement_snapshots",
		factory: settlement.New,
	}
}

// WithTx wraps the repository with a transaction, allowing atomic operations
// across multiple repository calls
func (r *SnapshotRepository[T]) WithTx(tx pgx.Tx) shared.AggregateRepository[T] {
	return &SnapshotRepository[T]{
		querier: tx,
		logger:  r.logger,
		table:   r.table,
		factory: r.factory,
	}
}

// GetLatestVersion loads the latest snapshot of the aggregate. An id that has
// never been saved yields a fresh aggregate, not an error.
func (r *SnapshotRepository[T]) GetLatestVersion(ctx context.Context, id uuid.UUID) (T, error) {
	query := fmt.Sprintf(`SELECT snapshot FROM %s WHERE id = $1`, r.table)

	aggregate := r.factory(id)

	var snapshot []byte
	err := r.querier.QueryRow(ctx, query, id).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return aggregate, nil
		}
		var zero T
		r.logger.Error("Failed to load aggregate snapshot", "table", r.table, "id", id.String(), "error", err)
		return zero, fmt.Errorf("failed to load aggregate %s from %s: %w", id, r.table, err)
	}

	if err := json.Unmarshal(snapshot, aggregate); err != nil {
		var zero T
		r.logger.Error("Failed to unmarshal aggregate snapshot", "table", r.table, "id", id.String(), "error", err)
		return zero, fmt.Errorf("failed to unmarshal aggregate %s from %s: %w", id, r.table, err)
	}
	aggregate.MarkPersisted()

	return aggregate, nil
}

// SaveChanges persists the aggregate snapshot. An aggregate that has not been
// mutated since load saves as a no-op. The update is guarded on the version
// the aggregate was loaded at; when another writer advanced the stored
// version in the meantime, ErrConcurrentModification is returned.
func (r *SnapshotRepository[T]) SaveChanges(ctx context.Context, aggregate T) error {
	if aggregate.AggregateVersion() == aggregate.PersistedVersion() {
		return nil
	}

	snapshot, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("failed to marshal aggregate %s for %s: %w", aggregate.AggregateID(), r.table, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, version, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version, snapshot = EXCLUDED.snapshot, updated_at = NOW()
		WHERE %s.version = $4
	`, r.table, r.table)

	result, err := r.querier.Exec(ctx, query,
		aggregate.AggregateID(),
		aggregate.AggregateVersion(),
		snapshot,
		aggregate.PersistedVersion(),
	)
	if err != nil {
		r.logger.Error("Failed to save aggregate snapshot", "table", r.table, "id", aggregate.AggregateID().String(), "error", err)
		return fmt.Errorf("failed to save aggregate %s to %s: %w", aggregate.AggregateID(), r.table, err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrConcurrentModification{AggregateID: aggregate.AggregateID()}
	}

	aggregate.MarkPersisted()
	return nil
}
