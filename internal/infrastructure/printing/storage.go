package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReportStorage defines the interface for storing and retrieving generated
// report artifacts (PDF and spreadsheet files).
type ReportStorage interface {
	// Store saves an artifact and returns its path
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get retrieves an artifact by its relative path
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes an artifact
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes artifacts older than the specified duration
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	// GetURL returns the accessible URL for a stored artifact
	GetURL(path string) string
}

// StoreRequest contains the parameters for storing an artifact
type StoreRequest struct {
	// Date is the fulfillment date the artifact belongs to
	Date time.Time
	// Name is the artifact file name, e.g. "checklists.pdf"
	Name string
	// Data is the raw file content
	Data []byte
}

// StoreResult contains the result of storing an artifact
type StoreResult struct {
	// Path is the storage path (relative to base)
	Path string
	// FullPath is the absolute path on disk
	FullPath string
	// URL is the accessible URL for the artifact
	URL string
	// Size is the file size in bytes
	Size int64
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for report output
	// Default: data/reports
	BasePath string
	// BaseURL is the URL prefix for accessing artifacts
	// Example: /api/v1/files
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores report artifacts on the local file system,
// one directory per fulfillment date.
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based report storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}

	if config.BasePath == "" {
		config.BasePath = filepath.Join("data", "reports")
	}
	if config.BaseURL == "" {
		config.BaseURL = "/api/v1/files"
	}

	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// Store saves an artifact to the file system.
// Path structure: {base}/{YYYY-MM-DD}/{name}
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if req == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.Date.IsZero() {
		return nil, NewRenderError(ErrCodeStorageFailed, "fulfillment date is required", nil)
	}
	if req.Name == "" || containsDotDot(req.Name) || strings.ContainsRune(req.Name, filepath.Separator) {
		return nil, NewRenderError(ErrCodeStorageFailed, "invalid artifact name", nil)
	}
	if len(req.Data) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "artifact data is empty", nil)
	}

	dateDir := req.Date.Format("2006-01-02")
	dirPath := filepath.Join(s.config.BasePath, dateDir)

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	fullPath := filepath.Join(dirPath, req.Name)
	if err := os.WriteFile(fullPath, req.Data, 0644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write artifact", err)
	}

	relativePath := filepath.Join(dateDir, req.Name)
	url := s.GetURL(relativePath)

	s.logger.Info("artifact stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.Data)),
		zap.String("url", url))

	return &StoreResult{
		Path:     relativePath,
		FullPath: fullPath,
		URL:      url,
		Size:     int64(len(req.Data)),
	}, nil
}

// Get retrieves an artifact by its relative path
func (s *FileSystemStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "artifact not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open artifact", err)
	}

	return file, nil
}

// Delete removes an artifact
func (s *FileSystemStorage) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted, not an error
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete artifact", err)
	}

	s.logger.Info("artifact deleted", zap.String("path", path))
	return nil
}

// resolve sanitizes a relative path and resolves it under BasePath,
// rejecting absolute paths and directory traversal.
func (s *FileSystemStorage) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) || containsDotDot(path) { // Check raw path for ".."
		s.logger.Warn("blocked potentially malicious path",
			zap.String("path", path),
			zap.String("cleanPath", cleanPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		s.logger.Warn("path escape attempt blocked",
			zap.String("path", path),
			zap.String("absPath", absPath),
			zap.String("absBase", absBase))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	return fullPath, nil
}

// CleanupOlderThan removes artifacts older than the specified duration
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deletedCount := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".pdf", ".xlsx":
		default:
			return nil
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deletedCount++
				s.logger.Debug("deleted old artifact", zap.String("path", path))
			}
		}

		return nil
	})

	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return deletedCount, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}

// GetURL returns the accessible URL for a stored artifact
func (s *FileSystemStorage) GetURL(path string) string {
	cleanPath := filepath.ToSlash(filepath.Clean(path))
	return fmt.Sprintf("%s/%s", s.config.BaseURL, cleanPath)
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements ReportStorage
var _ ReportStorage = (*FileSystemStorage)(nil)
