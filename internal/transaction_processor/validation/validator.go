package validation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
)

// TransactionValidator runs the pre-authorisation validation chain for each
// transaction type
type TransactionValidator interface {
	ValidateLogonTransaction(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID, deviceIdentifier string) Outcome
	ValidateReconciliationTransaction(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID, deviceIdentifier string) Outcome
	ValidateSaleTransaction(ctx context.Context, request SaleValidationRequest) Outcome
}

// SaleValidationRequest carries everything the sale chain needs
type SaleValidationRequest struct {
	EstateID         uuid.UUID
	MerchantID       uuid.UUID
	DeviceIdentifier string
	OperatorID       uuid.UUID
	Amount           *decimal.Decimal
	ContractID       uuid.UUID
	ProductID        uuid.UUID
}

// ValidatorImpl fetches collaborator snapshots and runs the gate chain over them
type ValidatorImpl struct {
	estateClient estate.Client
	balances     estate.BalanceProjection
	logger       *slog.Logger
}

// NewValidator creates a new transaction validator
func NewValidator(logger *slog.Logger, estateClient estate.Client, balances estate.BalanceProjection) TransactionValidator {
	return &ValidatorImpl{
		estateClient: estateClient,
		balances:     balances,
		logger:       logger,
	}
}

// fetchEstateAndMerchant resolves the estate and merchant snapshots, mapping
// collaborator failures onto the response code taxonomy
func (v *ValidatorImpl) fetchEstateAndMerchant(ctx context.Context, s *Snapshot, estateID uuid.UUID, merchantID uuid.UUID) *Outcome {
	estateSnapshot, err := v.estateClient.GetEstate(ctx, estateID)
	if err != nil {
		if shared.KindOf(err) == shared.ErrorKindNotFound {
			return terminal(shared.ResponseCodeInvalidEstateID, err.Error())
		}
		v.logger.Error("Failed to get estate", "estate_id", estateID.String(), "error", err)
		return terminal(shared.ResponseCodeUnknownFailure, err.Error())
	}
	s.Estate = estateSnapshot

	merchantSnapshot, err := v.estateClient.GetMerchant(ctx, estateID, merchantID)
	if err != nil {
		if shared.KindOf(err) == shared.ErrorKindNotFound {
			return terminal(shared.ResponseCodeInvalidMerchantID, err.Error())
		}
		v.logger.Error("Failed to get merchant", "merchant_id", merchantID.String(), "error", err)
		return terminal(shared.ResponseCodeUnknownFailure, err.Error())
	}
	s.Merchant = merchantSnapshot

	return nil
}

// ValidateLogonTransaction gates a logon transaction
func (v *ValidatorImpl) ValidateLogonTransaction(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID, deviceIdentifier string) Outcome {
	snapshot := &Snapshot{
		Request: Request{
			Type:             transaction.TypeLogon,
			DeviceIdentifier: deviceIdentifier,
		},
	}

	if outcome := v.fetchEstateAndMerchant(ctx, snapshot, estateID, merchantID); outcome != nil {
		return *outcome
	}

	return run(snapshot, logonGates())
}

// ValidateReconciliationTransaction gates a reconciliation transaction. Unlike
// logon, an empty device list is a failure here.
func (v *ValidatorImpl) ValidateReconciliationTransaction(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID, deviceIdentifier string) Outcome {
	snapshot := &Snapshot{
		Request: Request{
			Type:             transaction.TypeReconciliation,
			DeviceIdentifier: deviceIdentifier,
		},
	}

	if outcome := v.fetchEstateAndMerchant(ctx, snapshot, estateID, merchantID); outcome != nil {
		return *outcome
	}

	return run(snapshot, reconciliationGates())
}

// ValidateSaleTransaction gates a sale transaction, including the contract,
// product and merchant balance checks
func (v *ValidatorImpl) ValidateSaleTransaction(ctx context.Context, request SaleValidationRequest) Outcome {
	snapshot := &Snapshot{
		Request: Request{
			Type:             transaction.TypeSale,
			DeviceIdentifier: request.DeviceIdentifier,
			OperatorID:       request.OperatorID,
			Amount:           request.Amount,
			ContractID:       request.ContractID,
			ProductID:        request.ProductID,
		},
	}

	if outcome := v.fetchEstateAndMerchant(ctx, snapshot, request.EstateID, request.MerchantID); outcome != nil {
		return *outcome
	}

	contracts, err := v.estateClient.GetMerchantContracts(ctx, request.EstateID, request.MerchantID)
	if err != nil {
		v.logger.Error("Failed to get merchant contracts", "merchant_id", request.MerchantID.String(), "error", err)
		return Outcome{Code: shared.ResponseCodeUnknownFailure, Message: err.Error()}
	}
	snapshot.Contracts = contracts

	balance, err := v.balances.GetMerchantBalance(ctx, request.MerchantID)
	if err != nil {
		v.logger.Error("Failed to read merchant balance projection", "merchant_id", request.MerchantID.String(), "error", err)
		return Outcome{Code: shared.ResponseCodeUnknownFailure, Message: err.Error()}
	}
	snapshot.Balance = balance

	return run(snapshot, saleGates())
}
