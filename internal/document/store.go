package document

import (
	"context"

	"driverhub/pkg/domain"
)

// MetadataStore persists document rows. Save must atomically mark any prior
// current document of the same type superseded; rows are never deleted.
type MetadataStore interface {
	Save(ctx context.Context, doc Document) error
	ListCurrent(ctx context.Context, driverID domain.DriverID) ([]Document, error)
	FindByID(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) (Document, error)

	// MarkVerified flips the verified flag on one current document.
	MarkVerified(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error

	// MarkAllVerified flips the verified flag on every current document,
	// used when the profile-level decision lands.
	MarkAllVerified(ctx context.Context, driverID domain.DriverID) error
}

// BlobStore is the external byte store. Only the "store bytes, return ok"
// contract is assumed; retrieval and rendering are outside this service.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}
