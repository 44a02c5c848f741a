package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessLogonRequest represents a request to process a logon transaction
type ProcessLogonRequest struct {
	EstateID             string    `json:"estate_id" binding:"required,uuid"`
	MerchantID           string    `json:"merchant_id" binding:"required,uuid"`
	DeviceIdentifier     string    `json:"device_identifier" binding:"required"`
	TransactionDateTime  time.Time `json:"transaction_date_time" binding:"required"`
	TransactionNumber    string    `json:"transaction_number" binding:"required"`
	TransactionReference string    `json:"transaction_reference" binding:"required"`
}

// ProcessSaleRequest represents a request to process a sale transaction
type ProcessSaleRequest struct {
	EstateID              string            `json:"estate_id" binding:"required,uuid"`
	MerchantID            string            `json:"merchant_id" binding:"required,uuid"`
	DeviceIdentifier      string            `json:"device_identifier" binding:"required"`
	TransactionDateTime   time.Time         `json:"transaction_date_time" binding:"required"`
	TransactionNumber     string            `json:"transaction_number" binding:"required"`
	TransactionReference  string            `json:"transaction_reference" binding:"required"`
	Amount                decimal.Decimal   `json:"amount" binding:"required"`
	OperatorID            string            `json:"operator_id" binding:"required,uuid"`
	OperatorIdentifier    string            `json:"operator_identifier" binding:"required"`
	ContractID            string            `json:"contract_id" binding:"required,uuid"`
	ProductID             string            `json:"product_id" binding:"required,uuid"`
	Source                string            `json:"source,omitempty"`
	CustomerEmailAddress  string            `json:"customer_email_address,omitempty"`
	AdditionalRequestData map[string]string `json:"additional_request_data,omitempty"`
}

// ProcessReconciliationRequest represents a request to process a reconciliation transaction
type ProcessReconciliationRequest struct {
	EstateID             string           `json:"estate_id" binding:"required,uuid"`
	MerchantID           string           `json:"merchant_id" binding:"required,uuid"`
	DeviceIdentifier     string           `json:"device_identifier" binding:"required"`
	TransactionDateTime  time.Time        `json:"transaction_date_time" binding:"required"`
	TransactionNumber    string           `json:"transaction_number" binding:"required"`
	TransactionReference string           `json:"transaction_reference" binding:"required"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
}

// RequestReceiptRequest represents a request for an email receipt
type RequestReceiptRequest struct {
	CustomerEmailAddress string `json:"customer_email_address" binding:"required,email"`
}

// RecordCostPriceRequest represents a request to record the transaction cost
type RecordCostPriceRequest struct {
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required"`
	TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
}

// ProcessTransactionResponse represents a transaction workflow outcome in API responses
type ProcessTransactionResponse struct {
	TransactionID     string `json:"transaction_id"`
	ResponseCode      string `json:"response_code"`
	ResponseMessage   string `json:"response_message"`
	IsAuthorised      bool   `json:"is_authorised"`
	AuthorisationCode string `json:"authorisation_code,omitempty"`
}

// FeeResponse represents a calculated fee in API responses
type FeeResponse struct {
	FeeID             string          `json:"fee_id"`
	FeeType           string          `json:"fee_type"`
	CalculatedValue   decimal.Decimal `json:"calculated_value"`
	Status            string          `json:"status"`
	SettlementDueDate string          `json:"settlement_due_date,omitempty"`
	SettledAt         string          `json:"settled_at,omitempty"`
}

// TransactionResponse represents a full transaction in API responses
type TransactionResponse struct {
	TransactionID         string                       `json:"transaction_id"`
	Type                  string                       `json:"type"`
	EstateID              string                       `json:"estate_id"`
	MerchantID            string                       `json:"merchant_id"`
	DeviceIdentifier      string                       `json:"device_identifier"`
	TransactionDateTime   string                       `json:"transaction_date_time"`
	TransactionNumber     string                       `json:"transaction_number"`
	TransactionReference  string                       `json:"transaction_reference"`
	Amount                *decimal.Decimal             `json:"amount,omitempty"`
	IsAuthorised          bool                         `json:"is_authorised"`
	IsDeclined            bool                         `json:"is_declined"`
	IsCompleted           bool                         `json:"is_completed"`
	ResponseCode          string                       `json:"response_code"`
	ResponseMessage       string                       `json:"response_message"`
	AuthorisationCode     string                       `json:"authorisation_code,omitempty"`
	CustomerEmailAddress  string                       `json:"customer_email_address,omitempty"`
	Fees                  []FeeResponse                `json:"fees,omitempty"`
	AdditionalRequestData map[string]map[string]string `json:"additional_request_data,omitempty"`
}

// ProcessSettlementRequest represents a request to run a settlement batch
type ProcessSettlementRequest struct {
	EstateID       string    `json:"estate_id" binding:"required,uuid"`
	MerchantID     string    `json:"merchant_id" binding:"required,uuid"`
	SettlementDate time.Time `json:"settlement_date" binding:"required"`
}

// AddMerchantFeeRequest represents a request to record a calculated merchant fee
type AddMerchantFeeRequest struct {
	EstateID           string          `json:"estate_id" binding:"required,uuid"`
	MerchantID         string          `json:"merchant_id" binding:"required,uuid"`
	TransactionID      string          `json:"transaction_id" binding:"required,uuid"`
	FeeID              string          `json:"fee_id" binding:"required,uuid"`
	FeeValue           decimal.Decimal `json:"fee_value" binding:"required"`
	CalculatedFeeValue decimal.Decimal `json:"calculated_fee_value" binding:"required"`
	FeeCalculationType int             `json:"fee_calculation_type"`
	FeeCalculatedAt    time.Time       `json:"fee_calculated_at" binding:"required"`
	SettlementDueDate  time.Time       `json:"settlement_due_date" binding:"required"`
}

// AddSettledFeeRequest represents a request to settle a single fee immediately
type AddSettledFeeRequest struct {
	EstateID      string    `json:"estate_id" binding:"required,uuid"`
	MerchantID    string    `json:"merchant_id" binding:"required,uuid"`
	TransactionID string    `json:"transaction_id" binding:"required,uuid"`
	FeeID         string    `json:"fee_id" binding:"required,uuid"`
	SettledDate   time.Time `json:"settled_date" binding:"required"`
}

// CommandAcceptedResponse acknowledges an asynchronously processed command
type CommandAcceptedResponse struct {
	Status string `json:"status"`
}
