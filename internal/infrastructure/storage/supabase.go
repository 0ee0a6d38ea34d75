package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/shared"
	storage "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// Ensure SupabaseObjectStorage implements ObjectStore
var _ appprinting.ObjectStore = (*SupabaseObjectStorage)(nil)

// SupabaseObjectStorage stores objects in a Supabase storage bucket
type SupabaseObjectStorage struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewSupabaseObjectStorage creates a client against <supabaseURL>/storage/v1
// authenticated with a service role key
func NewSupabaseObjectStorage(supabaseURL, serviceKey, bucket string, logger *zap.Logger) (*SupabaseObjectStorage, error) {
	if supabaseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if serviceKey == "" {
		return nil, errors.New("supabase service key is required")
	}
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &SupabaseObjectStorage{
		client: storage.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload writes data to path, replacing an existing object
func (s *SupabaseObjectStorage) Upload(_ context.Context, path string, data []byte, contentType string) error {
	if path == "" {
		return shared.NewValidationError("storage path is required")
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return shared.NewStorageError("upload", path, err)
	}
	s.logger.Debug("Uploaded object", zap.String("bucket", s.bucket), zap.String("path", path))
	return nil
}

// Download reads the object at path
func (s *SupabaseObjectStorage) Download(_ context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, shared.NewValidationError("storage path is required")
	}
	data, err := s.client.DownloadFile(s.bucket, path)
	if err != nil {
		if isSupabaseNotFound(err) {
			return nil, shared.NewStorageError("download", path, ErrObjectNotFound)
		}
		return nil, shared.NewStorageError("download", path, err)
	}
	return data, nil
}

// Delete removes the object at path
func (s *SupabaseObjectStorage) Delete(_ context.Context, path string) error {
	if path == "" {
		return shared.NewValidationError("storage path is required")
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil && !isSupabaseNotFound(err) {
		return shared.NewStorageError("delete", path, err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *SupabaseObjectStorage) Bucket() string {
	return s.bucket
}

func isSupabaseNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
