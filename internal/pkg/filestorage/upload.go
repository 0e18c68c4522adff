package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

// MaxUploadSize is the largest accepted evidence or image file
const MaxUploadSize int64 = 5 << 20

// Accepted content types
var (
	EvidenceTypes = []string{"image/jpeg", "image/png", "application/pdf"}
	ImageTypes    = []string{"image/jpeg", "image/png"}
)

// Upload is a file whose size and content type have been checked
type Upload struct {
	Filename    string
	ContentType string
	Extension   string
	Data        []byte
}

// Size returns the number of bytes in the upload
func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}

// Reader returns a fresh reader over the content
func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// NewUpload reads r and validates it against the size limit and the allowed content types.
// The type is sniffed from the content, never taken from the filename.
func NewUpload(filename string, r io.Reader, allowed []string, maxSize int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File %s is empty", filename))
	}
	if int64(len(data)) > maxSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File %s exceeds the %d MB limit", filename, maxSize>>20))
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File %s has unsupported type %s", filename, mtype.String()))
	}

	return &Upload{
		Filename:    filename,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Data:        data,
	}, nil
}

// FromFileHeader validates a multipart file before anything is stored
func FromFileHeader(fh *multipart.FileHeader, allowed []string, maxSize int64) (*Upload, error) {
	if fh.Size > maxSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("File %s exceeds the %d MB limit", fh.Filename, maxSize>>20))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()
	return NewUpload(fh.Filename, f, allowed, maxSize)
}
