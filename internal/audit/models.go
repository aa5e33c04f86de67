package audit

import (
	"time"

	"driverhub/pkg/domain"
)

// EventType names one pipeline transition worth keeping.
type EventType string

const (
	EventDriverApplied         EventType = "driver_applied"
	EventDocumentUploaded      EventType = "document_uploaded"
	EventVehicleAdded          EventType = "vehicle_added"
	EventRegistrationSubmitted EventType = "registration_submitted"
	EventDriverVerified        EventType = "driver_verified"
	EventDocumentVerified      EventType = "document_verified"
	EventDriverRejected        EventType = "driver_rejected"
	EventDriverDeactivated     EventType = "driver_deactivated"
)

// Event is one append-only audit record. Events are facts about transitions
// that already happened; they are never updated or deleted.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	DriverID  domain.DriverID   `json:"driver_id"`
	UserID    *domain.UserID    `json:"user_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
