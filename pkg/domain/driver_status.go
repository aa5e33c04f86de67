package domain

import dErrors "driverhub/pkg/domain-errors"

// DriverStatus is the pipeline position of a driver profile.
// Invariant: status only moves forward along the pipeline; deactivated is a
// sink reachable from any non-terminal state; verified and deactivated are
// terminal.
type DriverStatus string

const (
	StatusProfileCreated      DriverStatus = "profile_created"
	StatusDocumentsSubmitted  DriverStatus = "documents_submitted"
	StatusVehicleAdded        DriverStatus = "vehicle_added"
	StatusPendingVerification DriverStatus = "pending_verification"
	StatusVerified            DriverStatus = "verified"
	StatusDeactivated         DriverStatus = "deactivated"
)

// statusRank is the single source of truth for pipeline ordering. The
// "advance if higher than current" rule compares ranks, so racing writers
// can never regress a status. Deactivated sits outside the ordering.
var statusRank = map[DriverStatus]int{
	StatusProfileCreated:      1,
	StatusDocumentsSubmitted:  2,
	StatusVehicleAdded:        3,
	StatusPendingVerification: 4,
	StatusVerified:            5,
}

// ParseDriverStatus constructs a DriverStatus from external input (storage
// rows, admin requests). Errors with CodeInvalidInput on unknown values.
func ParseDriverStatus(s string) (DriverStatus, error) {
	st := DriverStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid driver status")
	}
	return st, nil
}

// IsValid checks the status is one of the supported enum values.
func (s DriverStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusDeactivated
}

// Rank returns the pipeline position for ordering comparisons. Deactivated
// and unknown values rank zero and never win an advance.
func (s DriverStatus) Rank() int { return statusRank[s] }

// IsTerminal reports whether no further pipeline transition may occur.
func (s DriverStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusDeactivated
}

// CanAdvanceTo reports whether a monotonic advance from s to target is a
// real transition. A false result with a valid target means the advance is
// a no-op (already at or past target), not an error.
func (s DriverStatus) CanAdvanceTo(target DriverStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return target.Rank() > s.Rank()
}

func (s DriverStatus) String() string { return string(s) }
