package driver

import (
	"time"

	"driverhub/pkg/domain"
)

// Profile is the driver entity. Created on apply, mutated only by
// orchestrator transitions and the verification gate, never deleted:
// deactivation retains the row for audit.
type Profile struct {
	ID     domain.DriverID
	UserID domain.UserID

	Status domain.DriverStatus

	// IsAvailable is meaningful only once Status is verified.
	IsAvailable bool

	LicenseNumber string
	Timezone      string
	Phone         string

	Rating      float64
	RatingCount int

	// RejectionReason holds the most recent gate rejection, cleared on the
	// next successful submit.
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}
