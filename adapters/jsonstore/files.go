package jsonstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const copyChunkSize = 1024 * 1024

// UploadStorage writes uploaded files under a base directory with
// collision-free generated names.
type UploadStorage struct {
	basePath string
}

// NewUploadStorage creates upload storage rooted at basePath
func NewUploadStorage(basePath string) *UploadStorage {
	return &UploadStorage{basePath: basePath}
}

// Dir returns the storage root
func (s *UploadStorage) Dir() string { return s.basePath }

// Store saves a file with a unique name derived from the original
func (s *UploadStorage) Store(ctx context.Context, file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Uploaded names can carry path fragments; keep only the base
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.basePath, uniqueName)
	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(destFile, file, buf); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}

	return filePath, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *UploadStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Size returns the size of a stored file
func (s *UploadStorage) Size(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Size(), nil
}
