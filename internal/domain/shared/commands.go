package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandType discriminates settlement command envelopes on the wire
type CommandType string

const (
	CommandTypeProcessSettlement               CommandType = "PROCESS_SETTLEMENT"
	CommandTypeAddMerchantFeePendingSettlement CommandType = "ADD_MERCHANT_FEE_PENDING_SETTLEMENT"
	CommandTypeAddSettledFeeToSettlement       CommandType = "ADD_SETTLED_FEE_TO_SETTLEMENT"
)

// CommandEnvelope wraps a settlement command for Kafka transport
type CommandEnvelope struct {
	Type          CommandType `json:"type"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Payload       []byte      `json:"payload"`
}

// ProcessSettlementCommand triggers the settlement batch for a merchant and date
type ProcessSettlementCommand struct {
	SettlementDate time.Time `json:"settlement_date"`
	MerchantID     uuid.UUID `json:"merchant_id"`
	EstateID       uuid.UUID `json:"estate_id"`
}

// AddMerchantFeePendingSettlementCommand records a calculated merchant fee that
// is due for settlement on a future date
type AddMerchantFeePendingSettlementCommand struct {
	TransactionID      uuid.UUID       `json:"transaction_id"`
	CalculatedFeeValue decimal.Decimal `json:"calculated_fee_value"`
	FeeCalculatedAt    time.Time       `json:"fee_calculated_at"`
	FeeCalculationType int             `json:"fee_calculation_type"`
	FeeID              uuid.UUID       `json:"fee_id"`
	FeeValue           decimal.Decimal `json:"fee_value"`
	SettlementDueDate  time.Time       `json:"settlement_due_date"`
	MerchantID         uuid.UUID       `json:"merchant_id"`
	EstateID           uuid.UUID       `json:"estate_id"`
}

// AddSettledFeeToSettlementCommand settles a single fee immediately, used for
// merchants on an Immediate settlement schedule
type AddSettledFeeToSettlementCommand struct {
	SettledDate   time.Time `json:"settled_date"`
	MerchantID    uuid.UUID `json:"merchant_id"`
	EstateID      uuid.UUID `json:"estate_id"`
	FeeID         uuid.UUID `json:"fee_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
}
