package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// settlementNamespace seeds the deterministic settlement id derivation
var settlementNamespace = uuid.MustParse("5c0a5f4a-3a30-4d26-b50d-9ef9e9f7a6f1")

// IDFor derives the SettlementId for a (estate, merchant, settlement date)
// key. The same key always maps to the same id, which is what makes lazy
// creation and idempotent retries safe.
func IDFor(estateID uuid.UUID, merchantID uuid.UUID, settlementDate time.Time) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%s", estateID, merchantID, settlementDate.Format("2006-01-02"))
	return uuid.NewSHA1(settlementNamespace, []byte(key))
}

// FeeReference identifies a single fee on a single transaction
type FeeReference struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	FeeID         uuid.UUID `json:"fee_id"`
}

// Settlement is the per (merchant, estate, settlement date) ledger of pending
// and settled fee references. The two sets are disjoint; moving a reference
// from pending to settled is idempotent. An instance with no recorded fee is a
// valid empty settlement, not an error state.
type Settlement struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`

	// version last seen in the store; not part of the snapshot
	persistedVersion int

	EstateID       uuid.UUID `json:"estate_id"`
	MerchantID     uuid.UUID `json:"merchant_id"`
	SettlementDate time.Time `json:"settlement_date"`
	IsCreated      bool      `json:"is_created"`

	PendingFees []FeeReference `json:"pending_fees,omitempty"`
	SettledFees []FeeReference `json:"settled_fees,omitempty"`
}

// New returns an empty settlement aggregate for the given id
func New(id uuid.UUID) *Settlement {
	return &Settlement{ID: id}
}

// AggregateID implements shared.AggregateRoot
func (s *Settlement) AggregateID() uuid.UUID {
	return s.ID
}

// AggregateVersion implements shared.AggregateRoot
func (s *Settlement) AggregateVersion() int {
	return s.Version
}

// PersistedVersion implements shared.AggregateRoot
func (s *Settlement) PersistedVersion() int {
	return s.persistedVersion
}

// MarkPersisted implements shared.AggregateRoot
func (s *Settlement) MarkPersisted() {
	s.persistedVersion = s.Version
}

func (s *Settlement) touch() {
	s.Version++
}

// Create records the settlement key the first time a fee arrives for it.
// Calling it again for the same key is a no-op.
func (s *Settlement) Create(estateID uuid.UUID, merchantID uuid.UUID, settlementDate time.Time) error {
	if estateID == uuid.Nil {
		return shared.NewArgumentInvalid("estate id is required")
	}
	if merchantID == uuid.Nil {
		return shared.NewArgumentInvalid("merchant id is required")
	}
	if settlementDate.IsZero() {
		return shared.NewArgumentInvalid("settlement date must be set")
	}
	if s.IsCreated {
		return nil
	}

	s.EstateID = estateID
	s.MerchantID = merchantID
	s.SettlementDate = settlementDate
	s.IsCreated = true
	s.touch()
	return nil
}

func containsFee(refs []FeeReference, transactionID uuid.UUID, feeID uuid.UUID) bool {
	for _, ref := range refs {
		if ref.TransactionID == transactionID && ref.FeeID == feeID {
			return true
		}
	}
	return false
}

// AddPendingFee appends a fee reference awaiting settlement. A reference that
// is already pending or already settled is left untouched.
func (s *Settlement) AddPendingFee(transactionID uuid.UUID, feeID uuid.UUID) error {
	if !s.IsCreated {
		return shared.NewIllegalState("settlement [%s] has not been created", s.ID)
	}
	if transactionID == uuid.Nil {
		return shared.NewArgumentInvalid("transaction id is required")
	}
	if feeID == uuid.Nil {
		return shared.NewArgumentInvalid("fee id is required")
	}
	if containsFee(s.PendingFees, transactionID, feeID) || containsFee(s.SettledFees, transactionID, feeID) {
		return nil
	}

	s.PendingFees = append(s.PendingFees, FeeReference{TransactionID: transactionID, FeeID: feeID})
	s.touch()
	return nil
}

// MarkFeeSettled moves a fee reference from pending to settled. A reference
// that was never pending is inserted directly into the settled set (merchants
// on an Immediate schedule settle without a pending stage). Re-applying for an
// already settled reference is a no-op.
func (s *Settlement) MarkFeeSettled(transactionID uuid.UUID, feeID uuid.UUID) error {
	if !s.IsCreated {
		return shared.NewIllegalState("settlement [%s] has not been created", s.ID)
	}
	if containsFee(s.SettledFees, transactionID, feeID) {
		return nil
	}

	for i, ref := range s.PendingFees {
		if ref.TransactionID == transactionID && ref.FeeID == feeID {
			s.PendingFees = append(s.PendingFees[:i], s.PendingFees[i+1:]...)
			break
		}
	}

	s.SettledFees = append(s.SettledFees, FeeReference{TransactionID: transactionID, FeeID: feeID})
	s.touch()
	return nil
}

// HasPendingFees reports whether any fee is still awaiting settlement
func (s *Settlement) HasPendingFees() bool {
	return len(s.PendingFees) > 0
}

// GetPendingFees returns the pending fee references in recorded order
func (s *Settlement) GetPendingFees() []FeeReference {
	refs := make([]FeeReference, len(s.PendingFees))
	copy(refs, s.PendingFees)
	return refs
}

// GetSettledFees returns the settled fee references in settlement order
func (s *Settlement) GetSettledFees() []FeeReference {
	refs := make([]FeeReference, len(s.SettledFees))
	copy(refs, s.SettledFees)
	return refs
}
