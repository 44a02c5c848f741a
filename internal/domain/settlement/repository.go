package settlement

import (
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// Repository persists settlement aggregates. Loading an id with no recorded
// state returns a fresh, uncreated aggregate; the service creates it lazily
// when the first fee for the key arrives.
type Repository = shared.AggregateRepository[*Settlement]
