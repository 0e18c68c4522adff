package filestorage

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestNewUploadSniffsContent(t *testing.T) {
	up, err := NewUpload("receipt.txt", bytes.NewReader(pngHeader), EvidenceTypes, MaxUploadSize)
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, ".png", up.Extension)

	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")
	up, err = NewUpload("proof.pdf", bytes.NewReader(pdf), EvidenceTypes, MaxUploadSize)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", up.ContentType)
}

func TestNewUploadRejects(t *testing.T) {
	_, err := NewUpload("notes.txt", strings.NewReader("just some plain text"), EvidenceTypes, MaxUploadSize)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = NewUpload("empty.png", bytes.NewReader(nil), EvidenceTypes, MaxUploadSize)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	_, err = NewUpload("big.png", bytes.NewReader(big), EvidenceTypes, 32)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	pdf := []byte("%PDF-1.4\n")
	_, err = NewUpload("doc.pdf", bytes.NewReader(pdf), ImageTypes, MaxUploadSize)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	owner := uuid.New()
	up, err := NewUpload("a.png", bytes.NewReader(pngHeader), ImageTypes, MaxUploadSize)
	require.NoError(t, err)

	url, err := ls.Save(context.Background(), owner, CategoryEvidence, up)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/evidence/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path, err := ls.GetFullPath(url)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, ls.Delete(context.Background(), url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.Delete(context.Background(), url), "deleting twice is not an error")
}

func TestLocalStorageRejectsForeignPaths(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	assert.Error(t, ls.Delete(context.Background(), "http://elsewhere/x.png"))
	assert.Error(t, ls.Delete(context.Background(), "http://localhost:8080/uploads/../../etc/passwd"))
}
