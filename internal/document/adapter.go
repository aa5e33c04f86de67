package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
)

// allowedFormats is the closed set of accepted payload formats, keyed by
// sniffed content type. Declared headers are advisory; sniffing decides.
var allowedFormats = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Adapter is the document store adapter: it validates payloads, writes the
// bytes to the blob store, and records the metadata row with supersede
// semantics. Validation errors surface as coded domain errors that the
// orchestrator passes through verbatim.
type Adapter struct {
	blobs    BlobStore
	metadata MetadataStore
	maxBytes int64
}

func NewAdapter(blobs BlobStore, metadata MetadataStore, maxBytes int64) *Adapter {
	return &Adapter{blobs: blobs, metadata: metadata, maxBytes: maxBytes}
}

// Store validates and persists one document upload. Repeated calls with the
// same type supersede the prior document.
func (a *Adapter) Store(ctx context.Context, driverID domain.DriverID, docType domain.DocumentType, content []byte) (Document, error) {
	if !docType.IsValid() {
		return Document{}, dErrors.New(dErrors.CodeUnsupportedType, "unsupported document type: "+docType.String())
	}
	if len(content) == 0 {
		return Document{}, dErrors.New(dErrors.CodeUnsupportedFormat, "document payload is empty")
	}
	if int64(len(content)) > a.maxBytes {
		return Document{}, dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("document exceeds %d bytes", a.maxBytes))
	}

	contentType := http.DetectContentType(content)
	if !allowedFormats[contentType] {
		return Document{}, dErrors.New(dErrors.CodeUnsupportedFormat, "unsupported document format: "+contentType)
	}

	sum := sha256.Sum256(content)
	doc := Document{
		ID:          domain.NewDocumentID(),
		DriverID:    driverID,
		Type:        docType,
		ContentType: contentType,
		SizeBytes:   int64(len(content)),
		Checksum:    hex.EncodeToString(sum[:]),
		UploadedAt:  time.Now(),
	}
	doc.StorageRef = fmt.Sprintf("drivers/%s/%s/%s", driverID, docType, doc.ID)

	if err := a.blobs.Put(ctx, doc.StorageRef, content, contentType); err != nil {
		return Document{}, fmt.Errorf("store document bytes: %w", err)
	}
	if err := a.metadata.Save(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("save document metadata: %w", err)
	}
	return doc, nil
}

// List returns the current (non-superseded) documents for a driver.
func (a *Adapter) List(ctx context.Context, driverID domain.DriverID) ([]Document, error) {
	return a.metadata.ListCurrent(ctx, driverID)
}

// MarkVerified flips one current document's verified flag.
func (a *Adapter) MarkVerified(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error {
	return a.metadata.MarkVerified(ctx, driverID, docID)
}

// MarkAllVerified flips every current document's verified flag.
func (a *Adapter) MarkAllVerified(ctx context.Context, driverID domain.DriverID) error {
	return a.metadata.MarkAllVerified(ctx, driverID)
}
