package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/validation"
)

// ProcessingServiceImpl implements the transaction workflows on top of the
// transaction aggregate, the validation chain and the operator proxy
type ProcessingServiceImpl struct {
	transactions  transaction.Repository
	validator     validation.TransactionValidator
	operatorProxy OperatorProxy
	logger        *slog.Logger
}

// NewProcessingService creates a new transaction processing service
func NewProcessingService(
	logger *slog.Logger,
	transactions transaction.Repository,
	validator validation.TransactionValidator,
	operatorProxy OperatorProxy,
) ProcessingService {
	return &ProcessingServiceImpl{
		transactions:  transactions,
		validator:     validator,
		operatorProxy: operatorProxy,
		logger:        logger,
	}
}

// localAuthorisationCode derives a short authorisation code for decisions made
// without an operator
func localAuthorisationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

func responseFor(txn *transaction.Transaction, code shared.ResponseCode, message string) ProcessTransactionResponse {
	return ProcessTransactionResponse{
		TransactionID:     txn.ID,
		ResponseCode:      code,
		ResponseMessage:   message,
		IsAuthorised:      txn.HasBeenAuthorised(),
		AuthorisationCode: txn.AuthorisationCode,
	}
}

// ProcessLogonTransaction runs a logon end to end. A failed validation still
// produces a completed, declined transaction and a successful service result
// carrying the decline code.
func (s *ProcessingServiceImpl) ProcessLogonTransaction(ctx context.Context, input ProcessLogonTransactionInput) shared.ResultValue[ProcessTransactionResponse] {
	txn, err := s.transactions.GetLatestVersion(ctx, input.TransactionID)
	if err != nil {
		s.logger.Error("Failed to load transaction", "transaction_id", input.TransactionID.String(), "error", err)
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := txn.Start(input.TransactionDateTime, input.TransactionNumber, transaction.TypeLogon,
		input.TransactionReference, input.EstateID, input.MerchantID, input.DeviceIdentifier, nil); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	outcome := s.validator.ValidateLogonTransaction(ctx, input.EstateID, input.MerchantID, input.DeviceIdentifier)
	if err := s.applyLocalDecision(txn, outcome); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := txn.Complete(); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", txn.ID.String(), "error", err)
		return shared.FailedValue[ProcessTransactionResponse]("saving transaction [%s]: %v", txn.ID, err)
	}

	s.logger.Info("Processed logon transaction",
		"transaction_id", txn.ID.String(),
		"merchant_id", input.MerchantID.String(),
		"response_code", outcome.Code.WireCode())
	return shared.SuccessValue(responseFor(txn, outcome.Code, outcome.Message))
}

// ProcessSaleTransaction runs a sale end to end. Validation failures decline
// locally; a validated sale is forwarded to the operator, whose decision is
// recorded on the aggregate.
func (s *ProcessingServiceImpl) ProcessSaleTransaction(ctx context.Context, input ProcessSaleTransactionInput) shared.ResultValue[ProcessTransactionResponse] {
	txn, err := s.transactions.GetLatestVersion(ctx, input.TransactionID)
	if err != nil {
		s.logger.Error("Failed to load transaction", "transaction_id", input.TransactionID.String(), "error", err)
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	amount := input.Amount
	if err := txn.Start(input.TransactionDateTime, input.TransactionNumber, transaction.TypeSale,
		input.TransactionReference, input.EstateID, input.MerchantID, input.DeviceIdentifier, &amount); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}
	if err := txn.AddSource(input.Source); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}
	if input.ContractID != uuid.Nil || input.ProductID != uuid.Nil {
		if err := txn.AddProductDetails(input.ContractID, input.ProductID); err != nil {
			return shared.ValueFromError[ProcessTransactionResponse](err)
		}
	}
	if err := txn.RecordAdditionalRequestData(input.OperatorIdentifier, input.AdditionalRequestData); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	outcome := s.validator.ValidateSaleTransaction(ctx, validation.SaleValidationRequest{
		EstateID:         input.EstateID,
		MerchantID:       input.MerchantID,
		DeviceIdentifier: input.DeviceIdentifier,
		OperatorID:       input.OperatorID,
		Amount:           &amount,
		ContractID:       input.ContractID,
		ProductID:        input.ProductID,
	})

	var code shared.ResponseCode
	var message string
	if outcome.IsSuccess() {
		code, message, err = s.processSaleWithOperator(ctx, txn, input)
		if err != nil {
			return shared.ValueFromError[ProcessTransactionResponse](err)
		}
	} else {
		code, message = outcome.Code, outcome.Message
		if err := txn.DeclineLocally(code.WireCode(), message); err != nil {
			return shared.ValueFromError[ProcessTransactionResponse](err)
		}
	}

	if err := txn.Complete(); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if txn.HasBeenAuthorised() && input.CustomerEmailAddress != "" {
		if err := txn.RequestEmailReceipt(input.CustomerEmailAddress); err != nil {
			return shared.ValueFromError[ProcessTransactionResponse](err)
		}
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", txn.ID.String(), "error", err)
		return shared.FailedValue[ProcessTransactionResponse]("saving transaction [%s]: %v", txn.ID, err)
	}

	s.logger.Info("Processed sale transaction",
		"transaction_id", txn.ID.String(),
		"merchant_id", input.MerchantID.String(),
		"authorised", txn.HasBeenAuthorised(),
		"response_code", code.WireCode())
	return shared.SuccessValue(responseFor(txn, code, message))
}

// processSaleWithOperator forwards a validated sale to the operator and
// records the decision. An operator transport failure declines the sale, it
// does not fail the workflow.
func (s *ProcessingServiceImpl) processSaleWithOperator(ctx context.Context, txn *transaction.Transaction,
	input ProcessSaleTransactionInput) (shared.ResponseCode, string, error) {
	operatorResponse, err := s.operatorProxy.ProcessSale(ctx, OperatorSaleRequest{
		TransactionID:         txn.ID,
		EstateID:              input.EstateID,
		MerchantID:            input.MerchantID,
		OperatorIdentifier:    input.OperatorIdentifier,
		DeviceIdentifier:      input.DeviceIdentifier,
		TransactionNumber:     input.TransactionNumber,
		Amount:                input.Amount,
		AdditionalRequestData: input.AdditionalRequestData,
	})
	if err != nil {
		s.logger.Error("Operator call failed", "transaction_id", txn.ID.String(),
			"operator", input.OperatorIdentifier, "error", err)
		code := shared.ResponseCodeUnknownFailure
		message := err.Error()
		if declineErr := txn.Decline(input.OperatorIdentifier, "", message, code.WireCode(), message); declineErr != nil {
			return 0, "", declineErr
		}
		return code, message, nil
	}

	// Response metadata must land before the decision locks the aggregate
	if err := txn.RecordAdditionalResponseData(input.OperatorIdentifier, operatorResponse.AdditionalResponseData); err != nil {
		return 0, "", err
	}

	if operatorResponse.IsSuccessful {
		code := shared.ResponseCodeSuccess
		if err := txn.Authorise(input.OperatorIdentifier, operatorResponse.AuthorisationCode,
			operatorResponse.ResponseCode, operatorResponse.ResponseMessage,
			operatorResponse.OperatorTransactionID, code.WireCode(), "SUCCESS"); err != nil {
			return 0, "", err
		}
		return code, "SUCCESS", nil
	}

	code := shared.ResponseCodeUnknownFailure
	if err := txn.Decline(input.OperatorIdentifier, operatorResponse.ResponseCode,
		operatorResponse.ResponseMessage, code.WireCode(), operatorResponse.ResponseMessage); err != nil {
		return 0, "", err
	}
	return code, operatorResponse.ResponseMessage, nil
}

// ProcessReconciliationTransaction runs a reconciliation end to end. The
// decision is always made locally.
func (s *ProcessingServiceImpl) ProcessReconciliationTransaction(ctx context.Context, input ProcessReconciliationTransactionInput) shared.ResultValue[ProcessTransactionResponse] {
	txn, err := s.transactions.GetLatestVersion(ctx, input.TransactionID)
	if err != nil {
		s.logger.Error("Failed to load transaction", "transaction_id", input.TransactionID.String(), "error", err)
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := txn.Start(input.TransactionDateTime, input.TransactionNumber, transaction.TypeReconciliation,
		input.TransactionReference, input.EstateID, input.MerchantID, input.DeviceIdentifier, input.Amount); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	outcome := s.validator.ValidateReconciliationTransaction(ctx, input.EstateID, input.MerchantID, input.DeviceIdentifier)
	if err := s.applyLocalDecision(txn, outcome); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := txn.Complete(); err != nil {
		return shared.ValueFromError[ProcessTransactionResponse](err)
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", txn.ID.String(), "error", err)
		return shared.FailedValue[ProcessTransactionResponse]("saving transaction [%s]: %v", txn.ID, err)
	}

	s.logger.Info("Processed reconciliation transaction",
		"transaction_id", txn.ID.String(),
		"merchant_id", input.MerchantID.String(),
		"response_code", outcome.Code.WireCode())
	return shared.SuccessValue(responseFor(txn, outcome.Code, outcome.Message))
}

// applyLocalDecision authorises or declines the transaction locally from a
// validation outcome
func (s *ProcessingServiceImpl) applyLocalDecision(txn *transaction.Transaction, outcome validation.Outcome) error {
	if outcome.IsSuccess() {
		return txn.AuthoriseLocally(localAuthorisationCode(), outcome.Code.WireCode(), outcome.Message)
	}
	return txn.DeclineLocally(outcome.Code.WireCode(), outcome.Message)
}

// RequestTransactionReceipt requests a customer email receipt for a completed transaction
func (s *ProcessingServiceImpl) RequestTransactionReceipt(ctx context.Context, transactionID uuid.UUID, customerEmailAddress string) shared.Result {
	txn, err := s.transactions.GetLatestVersion(ctx, transactionID)
	if err != nil {
		return shared.ResultFromError(err)
	}
	if !txn.IsStarted {
		return shared.NotFound("transaction [%s] was not found", transactionID)
	}

	if err := txn.RequestEmailReceipt(customerEmailAddress); err != nil {
		return shared.ResultFromError(err)
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", transactionID.String(), "error", err)
		return shared.Failed("saving transaction [%s]: %v", transactionID, err)
	}
	return shared.Success()
}

// ResendTransactionReceipt resends a previously requested receipt
func (s *ProcessingServiceImpl) ResendTransactionReceipt(ctx context.Context, transactionID uuid.UUID) shared.Result {
	txn, err := s.transactions.GetLatestVersion(ctx, transactionID)
	if err != nil {
		return shared.ResultFromError(err)
	}
	if !txn.IsStarted {
		return shared.NotFound("transaction [%s] was not found", transactionID)
	}

	if err := txn.RequestEmailReceiptResend(); err != nil {
		return shared.ResultFromError(err)
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", transactionID.String(), "error", err)
		return shared.Failed("saving transaction [%s]: %v", transactionID, err)
	}
	return shared.Success()
}

// RecordTransactionCostPrice records the unit and total cost of a transaction
func (s *ProcessingServiceImpl) RecordTransactionCostPrice(ctx context.Context, transactionID uuid.UUID, unitCost decimal.Decimal, totalCost decimal.Decimal) shared.Result {
	txn, err := s.transactions.GetLatestVersion(ctx, transactionID)
	if err != nil {
		return shared.ResultFromError(err)
	}
	if !txn.IsStarted {
		return shared.NotFound("transaction [%s] was not found", transactionID)
	}

	if err := txn.RecordCostPrice(unitCost, totalCost); err != nil {
		return shared.ResultFromError(err)
	}

	if err := s.transactions.SaveChanges(ctx, txn); err != nil {
		s.logger.Error("Failed to save transaction", "transaction_id", transactionID.String(), "error", err)
		return shared.Failed("saving transaction [%s]: %v", transactionID, err)
	}
	return shared.Success()
}

// GetTransaction returns the latest state of a transaction
func (s *ProcessingServiceImpl) GetTransaction(ctx context.Context, transactionID uuid.UUID) shared.ResultValue[*transaction.Transaction] {
	txn, err := s.transactions.GetLatestVersion(ctx, transactionID)
	if err != nil {
		return shared.ValueFromError[*transaction.Transaction](err)
	}
	if !txn.IsStarted {
		return shared.NotFoundValue[*transaction.Transaction]("transaction [%s] was not found", transactionID)
	}
	return shared.SuccessValue(txn)
}
