// Package estate holds read-only snapshots of the estate management domain.
// Estates, merchants and contracts are owned by an external service; this core
// only consumes them through the client interfaces below when gating a
// transaction.
package estate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementSchedule determines when a merchant's fees become settled
type SettlementSchedule string

const (
	ScheduleImmediate SettlementSchedule = "Immediate"
	ScheduleWeekly    SettlementSchedule = "Weekly"
	ScheduleMonthly   SettlementSchedule = "Monthly"
)

// NextDueDate computes the settlement due date for a fee calculated at the
// given time. Immediate schedules settle on the calculation date itself.
func (s SettlementSchedule) NextDueDate(calculatedAt time.Time) time.Time {
	switch s {
	case ScheduleWeekly:
		return calculatedAt.AddDate(0, 0, 7)
	case ScheduleMonthly:
		return calculatedAt.AddDate(0, 1, 0)
	default:
		return calculatedAt
	}
}

// OperatorSnapshot is an operator as configured for an estate
type OperatorSnapshot struct {
	OperatorID uuid.UUID `json:"operator_id"`
	Name       string    `json:"name"`
	IsDeleted  bool      `json:"is_deleted"`
}

// EstateSnapshot is the estate view consumed by the validation chain
type EstateSnapshot struct {
	EstateID  uuid.UUID          `json:"estate_id"`
	Name      string             `json:"name"`
	Operators []OperatorSnapshot `json:"operators"`
}

// MerchantOperatorSnapshot is an operator assignment on a merchant
type MerchantOperatorSnapshot struct {
	OperatorID uuid.UUID `json:"operator_id"`
	IsDeleted  bool      `json:"is_deleted"`
}

// MerchantSnapshot is the merchant view consumed by the validation chain
type MerchantSnapshot struct {
	MerchantID         uuid.UUID                  `json:"merchant_id"`
	EstateID           uuid.UUID                  `json:"estate_id"`
	Name               string                     `json:"name"`
	Devices            []string                   `json:"devices"`
	Operators          []MerchantOperatorSnapshot `json:"operators"`
	SettlementSchedule SettlementSchedule         `json:"settlement_schedule"`
}

// ProductSnapshot is a product configured under a contract
type ProductSnapshot struct {
	ProductID uuid.UUID        `json:"product_id"`
	Name      string           `json:"name"`
	Value     *decimal.Decimal `json:"value,omitempty"`
}

// ContractSnapshot is a contract assigned to a merchant
type ContractSnapshot struct {
	ContractID uuid.UUID         `json:"contract_id"`
	OperatorID uuid.UUID         `json:"operator_id"`
	Products   []ProductSnapshot `json:"products"`
}

// BalanceSnapshot is the merchant balance read from the materialized projection
type BalanceSnapshot struct {
	MerchantID uuid.UUID       `json:"merchant_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// Client reads estate, merchant and contract snapshots from the external
// estate management service
type Client interface {
	GetEstate(ctx context.Context, estateID uuid.UUID) (*EstateSnapshot, error)
	GetMerchant(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID) (*MerchantSnapshot, error)
	GetMerchantContracts(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID) ([]ContractSnapshot, error)
}

// BalanceProjection reads merchant balances from the materialized balance view
type BalanceProjection interface {
	GetMerchantBalance(ctx context.Context, merchantID uuid.UUID) (*BalanceSnapshot, error)
}
