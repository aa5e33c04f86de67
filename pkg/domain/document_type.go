package domain

import dErrors "driverhub/pkg/domain-errors"

// DocumentType tags an uploaded driver document. The set is closed: values
// outside it are rejected at the boundary rather than stored.
type DocumentType string

const (
	DocumentTypeLicense             DocumentType = "license"
	DocumentTypeIdentity            DocumentType = "identity"
	DocumentTypeInsurance           DocumentType = "insurance"
	DocumentTypeVehicleRegistration DocumentType = "vehicle_registration"
)

// validDocumentTypes is the single source of truth for the closed set.
var validDocumentTypes = map[DocumentType]bool{
	DocumentTypeLicense:             true,
	DocumentTypeIdentity:            true,
	DocumentTypeInsurance:           true,
	DocumentTypeVehicleRegistration: true,
}

// RequiredDocumentTypes lists every type a registration must carry before
// submit. Order is stable for deterministic missing-item reporting.
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeLicense,
		DocumentTypeIdentity,
		DocumentTypeInsurance,
		DocumentTypeVehicleRegistration,
	}
}

// ParseDocumentType constructs a DocumentType from external input.
// Errors with CodeUnsupportedType for values outside the closed set.
func ParseDocumentType(s string) (DocumentType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeUnsupportedType, "document type cannot be empty")
	}
	t := DocumentType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeUnsupportedType, "unsupported document type: "+s)
	}
	return t, nil
}

// IsValid checks the type is one of the supported enum values.
func (t DocumentType) IsValid() bool { return validDocumentTypes[t] }

func (t DocumentType) String() string { return string(t) }
