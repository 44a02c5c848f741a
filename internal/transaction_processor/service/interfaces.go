package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
)

// ProcessingService runs the transaction workflows end to end: start the
// aggregate, gate it through the validation chain, apply the decision and
// complete. Every entry point returns a tagged result; domain errors never
// escape.
type ProcessingService interface {
	ProcessLogonTransaction(ctx context.Context, input ProcessLogonTransactionInput) shared.ResultValue[ProcessTransactionResponse]
	ProcessSaleTransaction(ctx context.Context, input ProcessSaleTransactionInput) shared.ResultValue[ProcessTransactionResponse]
	ProcessReconciliationTransaction(ctx context.Context, input ProcessReconciliationTransactionInput) shared.ResultValue[ProcessTransactionResponse]
	RequestTransactionReceipt(ctx context.Context, transactionID uuid.UUID, customerEmailAddress string) shared.Result
	ResendTransactionReceipt(ctx context.Context, transactionID uuid.UUID) shared.Result
	RecordTransactionCostPrice(ctx context.Context, transactionID uuid.UUID, unitCost decimal.Decimal, totalCost decimal.Decimal) shared.Result
	GetTransaction(ctx context.Context, transactionID uuid.UUID) shared.ResultValue[*transaction.Transaction]
}

// OperatorProxy forwards an authorisation request to the external operator.
// Operator transports are out of scope for this core; they are consumed only
// through this interface.
type OperatorProxy interface {
	ProcessSale(ctx context.Context, request OperatorSaleRequest) (*OperatorResponse, error)
}

// OperatorSaleRequest is the narrow view of a sale an operator needs
type OperatorSaleRequest struct {
	TransactionID         uuid.UUID
	EstateID              uuid.UUID
	MerchantID            uuid.UUID
	OperatorIdentifier    string
	DeviceIdentifier      string
	TransactionNumber     string
	Amount                decimal.Decimal
	AdditionalRequestData map[string]string
}

// OperatorResponse is the operator's decision on a sale
type OperatorResponse struct {
	IsSuccessful           bool
	AuthorisationCode      string
	ResponseCode           string
	ResponseMessage        string
	OperatorTransactionID  string
	AdditionalResponseData map[string]string
}

// ProcessLogonTransactionInput starts and completes a logon transaction
type ProcessLogonTransactionInput struct {
	TransactionID        uuid.UUID
	EstateID             uuid.UUID
	MerchantID           uuid.UUID
	DeviceIdentifier     string
	TransactionDateTime  time.Time
	TransactionNumber    string
	TransactionReference string
}

// ProcessSaleTransactionInput starts and completes a sale transaction
type ProcessSaleTransactionInput struct {
	TransactionID         uuid.UUID
	EstateID              uuid.UUID
	MerchantID            uuid.UUID
	DeviceIdentifier      string
	TransactionDateTime   time.Time
	TransactionNumber     string
	TransactionReference  string
	Amount                decimal.Decimal
	OperatorID            uuid.UUID
	OperatorIdentifier    string
	ContractID            uuid.UUID
	ProductID             uuid.UUID
	Source                transaction.Source
	CustomerEmailAddress  string
	AdditionalRequestData map[string]string
}

// ProcessReconciliationTransactionInput starts and completes a reconciliation transaction
type ProcessReconciliationTransactionInput struct {
	TransactionID        uuid.UUID
	EstateID             uuid.UUID
	MerchantID           uuid.UUID
	DeviceIdentifier     string
	TransactionDateTime  time.Time
	TransactionNumber    string
	TransactionReference string
	Amount               *decimal.Decimal
}

// ProcessTransactionResponse is the caller-visible outcome of a workflow
type ProcessTransactionResponse struct {
	TransactionID     uuid.UUID           `json:"transaction_id"`
	ResponseCode      shared.ResponseCode `json:"response_code"`
	ResponseMessage   string              `json:"response_message"`
	IsAuthorised      bool                `json:"is_authorised"`
	AuthorisationCode string              `json:"authorisation_code,omitempty"`
}
