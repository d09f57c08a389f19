package featureflag

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for feature flag persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error)

	// FindByKey finds a flag by its unique key
	FindByKey(ctx context.Context, key string) (*FeatureFlag, error)

	// FindAll returns every flag ordered by key
	FindAll(ctx context.Context) ([]FeatureFlag, error)

	ExistsByKey(ctx context.Context, key string) (bool, error)

	Save(ctx context.Context, flag *FeatureFlag) error

	Delete(ctx context.Context, id uuid.UUID) error
}
