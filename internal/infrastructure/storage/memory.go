package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/shared"
)

// ErrObjectNotFound is the cause of a storage error for a missing object
var ErrObjectNotFound = errors.New("object not found")

// Ensure MemoryObjectStorage implements ObjectStore
var _ appprinting.ObjectStore = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory.
// Use this for development and tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]memoryObject)}
}

// Upload stores a copy of data at path
func (s *MemoryObjectStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if path == "" {
		return shared.NewValidationError("storage path is required")
	}
	if err := ctx.Err(); err != nil {
		return shared.NewStorageError("upload", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Download returns a copy of the object at path
func (s *MemoryObjectStorage) Download(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, shared.NewValidationError("storage path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, shared.NewStorageError("download", path, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, shared.NewStorageError("download", path, ErrObjectNotFound)
	}
	return append([]byte(nil), obj.data...), nil
}

// Delete removes the object at path; deleting a missing object succeeds
func (s *MemoryObjectStorage) Delete(_ context.Context, path string) error {
	if path == "" {
		return shared.NewValidationError("storage path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Exists reports whether an object is stored at path
func (s *MemoryObjectStorage) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok
}

// ContentType returns the content type recorded for path
func (s *MemoryObjectStorage) ContentType(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[path].contentType
}

// Paths lists stored paths in sorted order
func (s *MemoryObjectStorage) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
