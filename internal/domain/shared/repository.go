package shared

import (
	"context"

	"github.com/google/uuid"
)

// AggregateRoot is implemented by every persisted aggregate. The version
// advances on every applied mutation; the persisted version is the version
// last seen in the store, maintained by the store on load and save, and is
// the optimistic-concurrency token a save is guarded on.
type AggregateRoot interface {
	AggregateID() uuid.UUID
	AggregateVersion() int
	PersistedVersion() int
	MarkPersisted()
}

// AggregateRepository is the only persistence capability the domain services
// require. GetLatestVersion returns a fresh, empty aggregate when no state has
// been recorded for the id; absence is not an error for Transaction or
// Settlement. SaveChanges fails with ErrConcurrentModification when the stored
// version no longer matches the version the aggregate was loaded at, and is a
// no-op when the aggregate has not been mutated since load. Idempotent
// mutations that did not advance the version therefore save cleanly on retry.
type AggregateRepository[T AggregateRoot] interface {
	GetLatestVersion(ctx context.Context, id uuid.UUID) (T, error)
	SaveChanges(ctx context.Context, aggregate T) error
}

// ErrConcurrentModification indicates an optimistic-concurrency check failed
// on save. The core treats this as an ordinary save failure; retrying is the
// caller's responsibility.
type ErrConcurrentModification struct {
	AggregateID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for aggregate: " + e.AggregateID.String()
}

// Is implements the errors.Is interface for ErrConcurrentModification
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	if t.AggregateID == uuid.Nil {
		return true
	}
	return e.AggregateID == t.AggregateID
}
