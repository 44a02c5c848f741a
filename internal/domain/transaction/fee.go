package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// FeeType identifies who a calculated fee is payable to
type FeeType int

const (
	FeeTypeMerchant FeeType = iota
	FeeTypeServiceProvider
)

// IsValid reports whether the fee type is a recognised enum value
func (f FeeType) IsValid() bool {
	return f == FeeTypeMerchant || f == FeeTypeServiceProvider
}

// FeeCalculationType identifies how a fee value was derived
type FeeCalculationType int

const (
	FeeCalculationFixed FeeCalculationType = iota
	FeeCalculationPercentage
)

// FeeSettlementStatus is the per-fee settlement sub-state
type FeeSettlementStatus string

const (
	FeeStatusAccrued           FeeSettlementStatus = "Accrued"
	FeeStatusPendingSettlement FeeSettlementStatus = "PendingSettlement"
	FeeStatusSettled           FeeSettlementStatus = "Settled"
)

// CalculatedFee is a fee calculated against a completed, authorised
// transaction, keyed by FeeID within the owning transaction.
type CalculatedFee struct {
	FeeID           uuid.UUID           `json:"fee_id"`
	FeeType         FeeType             `json:"fee_type"`
	CalculationType FeeCalculationType  `json:"calculation_type"`
	FeeValue        decimal.Decimal     `json:"fee_value"`
	CalculatedValue decimal.Decimal     `json:"calculated_value"`
	CalculatedAt    time.Time           `json:"calculated_at"`
	Status          FeeSettlementStatus `json:"status"`

	SettlementDueDate *time.Time `json:"settlement_due_date,omitempty"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
	SettlementID      uuid.UUID  `json:"settlement_id,omitempty"`
}

func (t *Transaction) guardFeeMutation(fee *CalculatedFee) error {
	if fee == nil {
		return shared.NewArgumentInvalid("fee is required")
	}
	if t.Type == TypeLogon {
		return shared.NewUnsupported("fees are not supported on a logon transaction [%s]", t.ID)
	}
	if !t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has not been completed", t.ID)
	}
	if !t.HasBeenAuthorised() {
		return shared.NewIllegalState("transaction [%s] has not been authorised", t.ID)
	}
	if !fee.FeeType.IsValid() {
		return shared.NewIllegalState("fee type [%d] is not recognised", fee.FeeType)
	}
	return nil
}

func (t *Transaction) findFee(feeID uuid.UUID) *CalculatedFee {
	for i := range t.Fees {
		if t.Fees[i].FeeID == feeID {
			return &t.Fees[i]
		}
	}
	return nil
}

// AddFee accrues a calculated fee against the transaction. Re-adding a fee
// with the same FeeID is a no-op, not an error.
func (t *Transaction) AddFee(fee *CalculatedFee) error {
	if err := t.guardFeeMutation(fee); err != nil {
		return err
	}
	if t.findFee(fee.FeeID) != nil {
		return nil
	}

	recorded := *fee
	recorded.Status = FeeStatusAccrued
	t.Fees = append(t.Fees, recorded)
	t.touch()
	return nil
}

// AddFeePendingSettlement records a calculated fee that is due for settlement
// on the given date. Duplicate FeeIDs are a no-op.
func (t *Transaction) AddFeePendingSettlement(fee *CalculatedFee, settlementDueDate time.Time) error {
	if err := t.guardFeeMutation(fee); err != nil {
		return err
	}
	if t.findFee(fee.FeeID) != nil {
		return nil
	}

	recorded := *fee
	recorded.Status = FeeStatusPendingSettlement
	recorded.SettlementDueDate = &settlementDueDate
	t.Fees = append(t.Fees, recorded)
	t.touch()
	return nil
}

// AddSettledFee marks a fee as settled against the given settlement aggregate.
// A fee already recorded moves from pending to settled; a fee never recorded
// is inserted directly as settled (immediate-schedule merchants settle without
// a pending stage). Re-applying for an already settled FeeID is a no-op.
func (t *Transaction) AddSettledFee(fee *CalculatedFee, settledDate time.Time, settlementID uuid.UUID) error {
	if err := t.guardFeeMutation(fee); err != nil {
		return err
	}

	if existing := t.findFee(fee.FeeID); existing != nil {
		if existing.Status == FeeStatusSettled {
			return nil
		}
		existing.Status = FeeStatusSettled
		existing.SettledAt = &settledDate
		existing.SettlementID = settlementID
		t.touch()
		return nil
	}

	recorded := *fee
	recorded.Status = FeeStatusSettled
	recorded.SettledAt = &settledDate
	recorded.SettlementID = settlementID
	t.Fees = append(t.Fees, recorded)
	t.touch()
	return nil
}

// GetFees returns the recorded fees in the order they were added
func (t *Transaction) GetFees() []CalculatedFee {
	fees := make([]CalculatedFee, len(t.Fees))
	copy(fees, t.Fees)
	return fees
}
