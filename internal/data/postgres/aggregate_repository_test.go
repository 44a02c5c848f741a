package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transactionprocessing/transaction-processor/internal/domain/settlement"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTransactionRepo(mock pgxmock.PgxPoolIface) *SnapshotRepository[*transaction.Transaction] {
	return &SnapshotRepository[*transaction.Transaction]{
		querier: mock,
		logger:  newTestLogger(),
		table:   "transaction_snapshots",
		factory: transaction.New,
	}
}

func startedSaleTransaction(t *testing.T, id uuid.UUID) *transaction.Transaction {
	t.Helper()
	txn := transaction.New(id)
	amount := decimal.RequireFromString("150.00")
	err := txn.Start(time.Now().UTC(), "0001", transaction.TypeSale, "REF0001", uuid.New(), uuid.New(), "device1", &amount)
	require.NoError(t, err)
	return txn
}

func TestSnapshotRepository_GetLatestVersion(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newTransactionRepo(mock)

	query := `SELECT snapshot FROM transaction_snapshots WHERE id = \$1`

	t.Run("existing snapshot is rehydrated", func(t *testing.T) {
		txnID := uuid.New()
		stored := startedSaleTransaction(t, txnID)
		snapshot, err := json.Marshal(stored)
		require.NoError(t, err)

		mock.ExpectQuery(query).
			WithArgs(txnID).
			WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow(snapshot))

		txn, err := repo.GetLatestVersion(ctx, txnID)
		require.NoError(t, err)
		assert.Equal(t, txnID, txn.AggregateID())
		assert.Equal(t, stored.AggregateVersion(), txn.AggregateVersion())
		assert.Equal(t, txn.AggregateVersion(), txn.PersistedVersion())
		assert.True(t, txn.IsStarted)
		assert.Equal(t, "REF0001", txn.TransactionReference)
		require.NotNil(t, txn.Amount)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString("150.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id yields a fresh aggregate", func(t *testing.T) {
		txnID := uuid.New()
		mock.ExpectQuery(query).
			WithArgs(txnID).
			WillReturnError(pgx.ErrNoRows)

		txn, err := repo.GetLatestVersion(ctx, txnID)
		require.NoError(t, err)
		assert.Equal(t, txnID, txn.AggregateID())
		assert.Equal(t, 0, txn.AggregateVersion())
		assert.False(t, txn.IsStarted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		txnID := uuid.New()
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(txnID).
			WillReturnError(expectedErr)

		_, err := repo.GetLatestVersion(ctx, txnID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load aggregate")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt snapshot fails", func(t *testing.T) {
		txnID := uuid.New()
		mock.ExpectQuery(query).
			WithArgs(txnID).
			WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow([]byte("{not json")))

		_, err := repo.GetLatestVersion(ctx, txnID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal aggregate")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotRepository_SaveChanges(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newTransactionRepo(mock)

	query := `
		INSERT INTO transaction_snapshots \(id, version, snapshot, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, NOW\(\), NOW\(\)\)
		ON CONFLICT \(id\) DO UPDATE
		SET version = EXCLUDED.version, snapshot = EXCLUDED.snapshot, updated_at = NOW\(\)
		WHERE transaction_snapshots.version = \$4
	`

	t.Run("success", func(t *testing.T) {
		txn := startedSaleTransaction(t, uuid.New())
		snapshot, err := json.Marshal(txn)
		require.NoError(t, err)

		mock.ExpectExec(query).
			WithArgs(txn.AggregateID(), txn.AggregateVersion(), snapshot, 0).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.SaveChanges(ctx, txn)
		assert.NoError(t, err)
		assert.Equal(t, txn.AggregateVersion(), txn.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation after load saves against the loaded version", func(t *testing.T) {
		txn := startedSaleTransaction(t, uuid.New())
		txn.MarkPersisted()
		loadedVersion := txn.AggregateVersion()

		require.NoError(t, txn.RecordCostPrice(decimal.RequireFromString("90.00"), decimal.RequireFromString("90.00")))

		mock.ExpectExec(query).
			WithArgs(txn.AggregateID(), loadedVersion+1, pgxmock.AnyArg(), loadedVersion).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.SaveChanges(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unmutated aggregate saves as a no-op", func(t *testing.T) {
		txn := startedSaleTransaction(t, uuid.New())
		txn.MarkPersisted()

		// no Exec expected
		err := repo.SaveChanges(ctx, txn)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version reports concurrent modification", func(t *testing.T) {
		txn := startedSaleTransaction(t, uuid.New())

		mock.ExpectExec(query).
			WithArgs(txn.AggregateID(), txn.AggregateVersion(), pgxmock.AnyArg(), 0).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.SaveChanges(ctx, txn)
		assert.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification{AggregateID: txn.AggregateID()})
		assert.Equal(t, 0, txn.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		txn := startedSaleTransaction(t, uuid.New())
		expectedErr := errors.New("db error")

		mock.ExpectExec(query).
			WithArgs(txn.AggregateID(), txn.AggregateVersion(), pgxmock.AnyArg(), 0).
			WillReturnError(expectedErr)

		err := repo.SaveChanges(ctx, txn)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save aggregate")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotRepository_SettlementRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SnapshotRepository[*settlement.Settlement]{
		querier: mock,
		logger:  newTestLogger(),
		table:   "settlement_snapshots",
		factory: settlement.New,
	}

	estateID := uuid.New()
	merchantID := uuid.New()
	settlementDate := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	settlementID := settlement.IDFor(estateID, merchantID, settlementDate)

	stored := settlement.New(settlementID)
	require.NoError(t, stored.Create(estateID, merchantID, settlementDate))
	require.NoError(t, stored.AddPendingFee(uuid.New(), uuid.New()))
	snapshot, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT snapshot FROM settlement_snapshots WHERE id = \$1`).
		WithArgs(settlementID).
		WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow(snapshot))

	loaded, err := repo.GetLatestVersion(ctx, settlementID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCreated)
	assert.True(t, loaded.HasPendingFees())
	assert.Equal(t, stored.AggregateVersion(), loaded.AggregateVersion())
	assert.NoError(t, mock.ExpectationsWereMet())
}
