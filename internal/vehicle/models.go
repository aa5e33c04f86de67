package vehicle

import (
	"time"

	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
)

// Vehicle is a driver's active capacity profile. One per driver in the
// onboarding pipeline; replaceable until the profile is verified, immutable
// after.
type Vehicle struct {
	ID       domain.VehicleID
	DriverID domain.DriverID

	Make         string
	Model        string
	LicensePlate string

	// Capacity triple, all required and positive.
	MaxWeightKg float64
	MaxVolumeM3 float64
	MaxPackages int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCapacity enforces the positive capacity invariant.
func (v Vehicle) ValidateCapacity() error {
	if v.MaxWeightKg <= 0 {
		return dErrors.New(dErrors.CodeInvalidCapacity, "max_weight must be positive")
	}
	if v.MaxVolumeM3 <= 0 {
		return dErrors.New(dErrors.CodeInvalidCapacity, "max_volume must be positive")
	}
	if v.MaxPackages <= 0 {
		return dErrors.New(dErrors.CodeInvalidCapacity, "max_packages must be positive")
	}
	return nil
}
