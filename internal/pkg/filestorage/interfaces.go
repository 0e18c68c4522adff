package filestorage

import (
	"context"

	"github.com/google/uuid"
)

// Storage categories, used as the top-level folder of a stored object
const (
	CategoryEvidence = "evidence"
	CategoryItems    = "items"
)

// FileStorage stores uploaded files under a per-principal path and returns public URLs
type FileStorage interface {
	// Save stores the upload under <category>/<principalID>/ and returns its public URL
	Save(ctx context.Context, principalID uuid.UUID, category string, upload *Upload) (string, error)

	// Delete removes a file previously returned by Save. Missing files are not an error.
	Delete(ctx context.Context, fileURL string) error
}

func objectKey(principalID uuid.UUID, category string, upload *Upload) string {
	return category + "/" + principalID.String() + "/" + uuid.New().String() + upload.Extension
}
