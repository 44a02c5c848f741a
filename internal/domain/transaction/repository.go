package transaction

import (
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// Repository persists transaction aggregates. Loading an id with no recorded
// state returns a fresh, uninitialised aggregate.
type Repository = shared.AggregateRepository[*Transaction]
