package privacy

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for data request persistence
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DataRequest, error)

	// FindForUser lists a user's requests newest first
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]DataRequest, error)

	// FindAll lists requests for admins, optionally by status
	FindAll(ctx context.Context, tenantID uuid.UUID, status *RequestStatus, filter shared.Filter) ([]DataRequest, int64, error)

	// ExistsOpen checks for a non-terminal request of the same type
	ExistsOpen(ctx context.Context, tenantID, userID uuid.UUID, typ RequestType) (bool, error)

	// FindPending returns pending requests across tenants, oldest first
	FindPending(ctx context.Context, limit int) ([]DataRequest, error)

	Save(ctx context.Context, r *DataRequest) error

	// SaveWithLock updates the request if its version is unchanged; used to
	// claim requests when several instances run the job
	SaveWithLock(ctx context.Context, r *DataRequest) error
}
