package filestorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the upload under basePath/<category>/<principalID>/
func (ls *LocalStorage) Save(_ context.Context, principalID uuid.UUID, category string, upload *Upload) (string, error) {
	key := objectKey(principalID, category, upload)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	if err := os.WriteFile(dstPath, upload.Data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + key
	logger.Info().Str("filename", upload.Filename).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// Delete removes a stored file. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(_ context.Context, fileURL string) error {
	physicalPath, err := ls.GetFullPath(fileURL)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a public URL back to its path under basePath
func (ls *LocalStorage) GetFullPath(fileURL string) (string, error) {
	rel := strings.TrimPrefix(fileURL, ls.baseURL+"/")
	if rel == fileURL || rel == "" {
		return "", fmt.Errorf("file %s is not served by this storage", fileURL)
	}
	full := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	base := filepath.Clean(ls.basePath) + string(filepath.Separator)
	if !strings.HasPrefix(full, base) {
		return "", fmt.Errorf("invalid file path: %s", fileURL)
	}
	return full, nil
}
