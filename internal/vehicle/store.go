package vehicle

import (
	"context"

	"driverhub/pkg/domain"
)

// Store persists one active vehicle per driver. Upsert replaces the prior
// vehicle outright; calling twice is idempotent in outcome, not additive.
type Store interface {
	Upsert(ctx context.Context, v Vehicle) error
	FindByDriver(ctx context.Context, driverID domain.DriverID) (Vehicle, error)
}
