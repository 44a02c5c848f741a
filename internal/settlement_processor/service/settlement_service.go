package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
	"github.com/transactionprocessing/transaction-processor/internal/domain/settlement"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
)

// SettlementDomainService handles the settlement side of the fee lifecycle:
// recording pending fees, settling immediately for merchants on an Immediate
// schedule, and running the settlement batch for a merchant and date.
type SettlementDomainService interface {
	ProcessSettlement(ctx context.Context, command shared.ProcessSettlementCommand) shared.ResultValue[uuid.UUID]
	AddMerchantFeePendingSettlement(ctx context.Context, command shared.AddMerchantFeePendingSettlementCommand) shared.Result
	AddSettledFeeToSettlement(ctx context.Context, command shared.AddSettledFeeToSettlementCommand) shared.Result
}

// SettlementDomainServiceImpl runs the settlement workflows over the
// transaction and settlement aggregates
type SettlementDomainServiceImpl struct {
	transactions transaction.Repository
	settlements  settlement.Repository
	estateClient estate.Client
	logger       *slog.Logger
}

// NewSettlementDomainService creates a new settlement domain service
func NewSettlementDomainService(
	logger *slog.Logger,
	transactions transaction.Repository,
	settlements settlement.Repository,
	estateClient estate.Client,
) SettlementDomainService {
	return &SettlementDomainServiceImpl{
		transactions: transactions,
		settlements:  settlements,
		estateClient: estateClient,
		logger:       logger,
	}
}

// ProcessSettlement settles every pending fee recorded against the merchant's
// settlement for the given date. Pending fees are worked sequentially in
// recorded order; the first failure stops the batch, but everything settled up
// to that point stays settled, and a retried call skips it.
func (s *SettlementDomainServiceImpl) ProcessSettlement(ctx context.Context, command shared.ProcessSettlementCommand) shared.ResultValue[uuid.UUID] {
	settlementID := settlement.IDFor(command.EstateID, command.MerchantID, command.SettlementDate)

	agg, err := s.settlements.GetLatestVersion(ctx, settlementID)
	if err != nil {
		s.logger.Error("Failed to load settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.FailedValue[uuid.UUID]("loading settlement [%s]: %v", settlementID, err)
	}

	// Nothing recorded for this key, or everything already settled. Not an error.
	if !agg.IsCreated || !agg.HasPendingFees() {
		return shared.SuccessValue(settlementID)
	}

	if _, err := s.estateClient.GetMerchant(ctx, command.EstateID, command.MerchantID); err != nil {
		s.logger.Error("Failed to load merchant for settlement", "merchant_id", command.MerchantID.String(),
			"settlement_id", settlementID.String(), "error", err)
		return shared.FailedValue[uuid.UUID]("loading merchant [%s]: %v", command.MerchantID, err)
	}

	pending := agg.GetPendingFees()
	for _, ref := range pending {
		if err := s.settlePendingFee(ctx, agg, ref, command.SettlementDate, settlementID); err != nil {
			if saveErr := s.settlements.SaveChanges(ctx, agg); saveErr != nil {
				s.logger.Error("Failed to persist partial settlement progress",
					"settlement_id", settlementID.String(), "error", saveErr)
			}
			return shared.FailedValue[uuid.UUID]("settling fee [%s] on transaction [%s]: %v",
				ref.FeeID, ref.TransactionID, err)
		}
	}

	if err := s.settlements.SaveChanges(ctx, agg); err != nil {
		s.logger.Error("Failed to save settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.FailedValue[uuid.UUID]("saving settlement [%s]: %v", settlementID, err)
	}

	s.logger.Info("Processed settlement",
		"settlement_id", settlementID.String(),
		"merchant_id", command.MerchantID.String(),
		"fees_settled", len(pending))
	return shared.SuccessValue(settlementID)
}

// settlePendingFee settles a single pending fee reference on its transaction,
// persists the transaction, and marks the reference settled on the in-memory
// settlement. A fee an earlier attempt already settled on the transaction is
// not re-saved; only the settlement's own sets are realigned.
func (s *SettlementDomainServiceImpl) settlePendingFee(ctx context.Context, agg *settlement.Settlement,
	ref settlement.FeeReference, settledDate time.Time, settlementID uuid.UUID) error {
	txn, err := s.transactions.GetLatestVersion(ctx, ref.TransactionID)
	if err != nil {
		return err
	}

	fee := findTransactionFee(txn, ref.FeeID)
	if fee == nil {
		return shared.NewNotFound("fee [%s] was not found on transaction [%s]", ref.FeeID, ref.TransactionID)
	}

	if fee.Status == transaction.FeeStatusSettled {
		return agg.MarkFeeSettled(ref.TransactionID, ref.FeeID)
	}

	if err := txn.AddSettledFee(fee, settledDate, settlementID); err != nil {
		return err
	}
	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		return err
	}

	return agg.MarkFeeSettled(ref.TransactionID, ref.FeeID)
}

func findTransactionFee(txn *transaction.Transaction, feeID uuid.UUID) *transaction.CalculatedFee {
	for _, fee := range txn.GetFees() {
		if fee.FeeID == feeID {
			return &fee
		}
	}
	return nil
}

// AddMerchantFeePendingSettlement records a calculated merchant fee as pending
// on its transaction and registers it on the settlement for the due date,
// creating the settlement lazily on first use.
func (s *SettlementDomainServiceImpl) AddMerchantFeePendingSettlement(ctx context.Context, command shared.AddMerchantFeePendingSettlementCommand) shared.Result {
	txn, err := s.transactions.GetLatestVersion(ctx, command.TransactionID)
	if err != nil {
		s.logger.Error("Failed to load transaction", "transaction_id", command.TransactionID.String(), "error", err)
		return shared.ResultFromError(err)
	}

	fee := &transaction.CalculatedFee{
		FeeID:           command.FeeID,
		FeeType:         transaction.FeeTypeMerchant,
		CalculationType: transaction.FeeCalculationType(command.FeeCalculationType),
		FeeValue:        command.FeeValue,
		CalculatedValue: command.CalculatedFeeValue,
		CalculatedAt:    command.FeeCalculatedAt,
	}
	if err := txn.AddFeePendingSettlement(fee, command.SettlementDueDate); err != nil {
		return shared.ResultFromError(err)
	}
	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", command.TransactionID.String(), "error", err)
		return shared.Failed("saving transaction [%s]: %v", command.TransactionID, err)
	}

	settlementID := settlement.IDFor(command.EstateID, command.MerchantID, command.SettlementDueDate)
	agg, err := s.settlements.GetLatestVersion(ctx, settlementID)
	if err != nil {
		s.logger.Error("Failed to load settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.Failed("loading settlement [%s]: %v", settlementID, err)
	}
	if err := agg.Create(command.EstateID, command.MerchantID, command.SettlementDueDate); err != nil {
		return shared.ResultFromError(err)
	}
	if err := agg.AddPendingFee(command.TransactionID, command.FeeID); err != nil {
		return shared.ResultFromError(err)
	}
	if err := s.settlements.SaveChanges(ctx, agg); err != nil {
		s.logger.Error("Failed to save settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.Failed("saving settlement [%s]: %v", settlementID, err)
	}

	s.logger.Info("Recorded fee pending settlement",
		"transaction_id", command.TransactionID.String(),
		"fee_id", command.FeeID.String(),
		"settlement_id", settlementID.String(),
		"due_date", command.SettlementDueDate.Format(time.DateOnly))
	return shared.Success()
}

// AddSettledFeeToSettlement settles a single fee immediately, for merchants on
// an Immediate settlement schedule. The merchant must resolve first.
func (s *SettlementDomainServiceImpl) AddSettledFeeToSettlement(ctx context.Context, command shared.AddSettledFeeToSettlementCommand) shared.Result {
	if _, err := s.estateClient.GetMerchant(ctx, command.EstateID, command.MerchantID); err != nil {
		s.logger.Error("Failed to load merchant", "merchant_id", command.MerchantID.String(), "error", err)
		return shared.ResultFromError(err)
	}

	settlementID := settlement.IDFor(command.EstateID, command.MerchantID, command.SettledDate)

	txn, err := s.transactions.GetLatestVersion(ctx, command.TransactionID)
	if err != nil {
		s.logger.Error("Failed to load transaction", "transaction_id", command.TransactionID.String(), "error", err)
		return shared.ResultFromError(err)
	}
	fee := findTransactionFee(txn, command.FeeID)
	if fee == nil {
		return shared.NotFound("fee [%s] was not found on transaction [%s]", command.FeeID, command.TransactionID)
	}
	if err := txn.AddSettledFee(fee, command.SettledDate, settlementID); err != nil {
		return shared.ResultFromError(err)
	}
	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", command.TransactionID.String(), "error", err)
		return shared.Failed("saving transaction [%s]: %v", command.TransactionID, err)
	}

	agg, err := s.settlements.GetLatestVersion(ctx, settlementID)
	if err != nil {
		s.logger.Error("Failed to load settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.Failed("loading settlement [%s]: %v", settlementID, err)
	}
	if err := agg.Create(command.EstateID, command.MerchantID, command.SettledDate); err != nil {
		return shared.ResultFromError(err)
	}
	if err := agg.MarkFeeSettled(command.TransactionID, command.FeeID); err != nil {
		return shared.ResultFromError(err)
	}
	if err := s.settlements.SaveChanges(ctx, agg); err != nil {
		s.logger.Error("Failed to save settlement", "settlement_id", settlementID.String(), "error", err)
		return shared.Failed("saving settlement [%s]: %v", settlementID, err)
	}

	s.logger.Info("Settled fee immediately",
		"transaction_id", command.TransactionID.String(),
		"fee_id", command.FeeID.String(),
		"settlement_id", settlementID.String())
	return shared.Success()
}
