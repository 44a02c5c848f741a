package validation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
)

// Request carries the transaction attributes the gates decide on
type Request struct {
	Type             transaction.Type
	DeviceIdentifier string
	OperatorID       uuid.UUID
	Amount           *decimal.Decimal
	ContractID       uuid.UUID
	ProductID        uuid.UUID
}

// Snapshot is the shared validation context: the request plus the read-only
// collaborator data fetched up front. Gates are pure functions over it.
type Snapshot struct {
	Request   Request
	Estate    *estate.EstateSnapshot
	Merchant  *estate.MerchantSnapshot
	Contracts []estate.ContractSnapshot
	Balance   *estate.BalanceSnapshot
}
