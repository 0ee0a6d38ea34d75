package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Ensure LocalObjectStorage implements ObjectStore
var _ appprinting.ObjectStore = (*LocalObjectStorage)(nil)

// LocalObjectStorage stores objects as files under a base directory.
// Object paths map to relative file paths.
type LocalObjectStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalObjectStorage creates the base directory if needed
func NewLocalObjectStorage(basePath string, logger *zap.Logger) (*LocalObjectStorage, error) {
	if basePath == "" {
		basePath = "./data/objects"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalObjectStorage{basePath: abs, logger: logger}, nil
}

// Upload writes data to path via a temp file and rename
func (s *LocalObjectStorage) Upload(ctx context.Context, path string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return shared.NewStorageError("upload", path, err)
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return shared.NewStorageError("upload", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return shared.NewStorageError("upload", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return shared.NewStorageError("upload", path, err)
	}
	if err := tmp.Close(); err != nil {
		return shared.NewStorageError("upload", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return shared.NewStorageError("upload", path, err)
	}

	s.logger.Debug("Stored object", zap.String("path", path), zap.Int("size", len(data)))
	return nil
}

// Download reads the file at path
func (s *LocalObjectStorage) Download(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewStorageError("download", path, err)
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.NewStorageError("download", path, ErrObjectNotFound)
		}
		return nil, shared.NewStorageError("download", path, err)
	}
	return data, nil
}

// Delete removes the file at path; a missing file is not an error
func (s *LocalObjectStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return shared.NewStorageError("delete", path, err)
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return shared.NewStorageError("delete", path, err)
	}
	return nil
}

// resolve maps an object path to a file under basePath, rejecting traversal
func (s *LocalObjectStorage) resolve(path string) (string, error) {
	if path == "" {
		return "", shared.NewValidationError("storage path is required")
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || containsDotDot(path) {
		s.logger.Warn("Blocked storage path outside base directory", zap.String("path", path))
		return "", shared.NewValidationError(fmt.Sprintf("invalid storage path %q", path))
	}
	full := filepath.Join(s.basePath, clean)
	if !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", shared.NewValidationError(fmt.Sprintf("invalid storage path %q", path))
	}
	return full, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
