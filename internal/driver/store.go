package driver

import (
	"context"

	"driverhub/pkg/domain"
)

// Store persists driver profiles. Implementations must make every method
// atomic: AdvanceStatus and SetStatus are conditional writes so concurrent
// step operations serialize per driver and can never regress a status.
//
// Infrastructure facts surface as pkg/platform/sentinel errors, optionally
// wrapped.
type Store interface {
	// Create persists a new profile. Returns sentinel.ErrConflict when the
	// owning user already holds a profile (1:1 user to driver).
	Create(ctx context.Context, profile Profile) error

	FindByID(ctx context.Context, driverID domain.DriverID) (Profile, error)
	FindByUserID(ctx context.Context, userID domain.UserID) (Profile, error)

	// AdvanceStatus applies the monotonic "advance if higher than current"
	// rule and returns the resulting status. Reaching or already being at or
	// past target are both success; a terminal current status returns
	// sentinel.ErrInvalidState.
	AdvanceStatus(ctx context.Context, driverID domain.DriverID, target domain.DriverStatus) (domain.DriverStatus, error)

	// SetStatus is the gate's conditional transition: it moves from exactly
	// `from` to `to`, returning sentinel.ErrInvalidState when the current
	// status differs from `from`.
	SetStatus(ctx context.Context, driverID domain.DriverID, from, to domain.DriverStatus) error

	// RecordRejection stores the gate's rejection reason without changing
	// status.
	RecordRejection(ctx context.Context, driverID domain.DriverID, reason string) error

	// SetAvailability flips the availability flag. Callers enforce that the
	// profile is verified.
	SetAvailability(ctx context.Context, driverID domain.DriverID, available bool) error
}
