package domain

import (
	"github.com/google/uuid"

	dErrors "driverhub/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types prevent cross-entity assignment at
// compile time; construct via the ParseXxxID helpers at trust boundaries so
// the "valid, non-empty, non-nil" invariant holds everywhere else.
type (
	UserID     uuid.UUID
	DriverID   uuid.UUID
	DocumentID uuid.UUID
	VehicleID  uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return parsed, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user")
	return UserID(parsed), err
}

// ParseDriverID constructs a DriverID from external input.
func ParseDriverID(s string) (DriverID, error) {
	parsed, err := parseUUID(s, "driver")
	return DriverID(parsed), err
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	parsed, err := parseUUID(s, "document")
	return DocumentID(parsed), err
}

// ParseVehicleID constructs a VehicleID from external input.
func ParseVehicleID(s string) (VehicleID, error) {
	parsed, err := parseUUID(s, "vehicle")
	return VehicleID(parsed), err
}

// NewUserID mints a fresh UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDriverID mints a fresh DriverID.
func NewDriverID() DriverID { return DriverID(uuid.New()) }

// NewDocumentID mints a fresh DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewVehicleID mints a fresh VehicleID.
func NewVehicleID() VehicleID { return VehicleID(uuid.New()) }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id DriverID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id VehicleID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DriverID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id VehicleID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps typed IDs as canonical UUID strings in JSON and
// storage rather than raw byte arrays.

func (id UserID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id DriverID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id VehicleID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DriverID) UnmarshalText(text []byte) error {
	parsed, err := ParseDriverID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DocumentID) UnmarshalText(text []byte) error {
	parsed, err := ParseDocumentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VehicleID) UnmarshalText(text []byte) error {
	parsed, err := ParseVehicleID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
