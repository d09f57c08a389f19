package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores audit entries. There is no update or delete.
type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error

	// Find lists entries newest first
	Find(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Entry, int64, error)

	// FindAboutUser lists entries where the user is the actor or the entity
	FindAboutUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Entry, error)

	// ScrubUser removes IP addresses and details from the user's entries
	// while keeping the user ID, used by erasure
	ScrubUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}
