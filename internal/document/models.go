package document

import (
	"time"

	"driverhub/pkg/domain"
)

// Document is the metadata row for one uploaded driver document. The bytes
// themselves live behind BlobStore; StorageRef is the retrievable
// reference.
//
// At most one current document per type per driver is authoritative:
// re-upload of a type supersedes the prior row. Superseded rows are
// retained for audit and excluded from default reads.
type Document struct {
	ID       domain.DocumentID
	DriverID domain.DriverID
	Type     domain.DocumentType

	StorageRef  string
	ContentType string
	SizeBytes   int64
	Checksum    string

	// Verified is flipped only by the verification gate, independently of
	// the profile-level decision.
	Verified   bool
	Superseded bool

	UploadedAt time.Time
}
