// Package conversion turns uploaded source files into PDF bytes.
package conversion

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Ensure Registry implements Converter
var _ appprinting.Converter = (*Registry)(nil)

// mimeTypes maps content types to the source type keys converters register under
var mimeTypes = map[string]string{
	"application/pdf":       "pdf",
	"text/html":             "html",
	"application/xhtml+xml": "html",
	"image/jpeg":            "jpg",
	"image/png":             "png",
	"application/msword":    "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.ms-powerpoint":                                             "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.oasis.opendocument.text":                                   "odt",
}

// NormalizeSourceType maps a content type, file name or extension to a
// lower-case extension key such as "pdf" or "docx"
func NormalizeSourceType(sourceType string) string {
	s := strings.ToLower(strings.TrimSpace(sourceType))
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		if key, ok := mimeTypes[mt]; ok {
			return key
		}
	}
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	if s == "jpeg" {
		return "jpg"
	}
	if s == "htm" {
		return "html"
	}
	return s
}

// Registry dispatches conversions to the converter registered for a source type
type Registry struct {
	mu         sync.RWMutex
	converters map[string]appprinting.Converter
	logger     *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{converters: make(map[string]appprinting.Converter), logger: logger}
}

// Register adds c for each source type
func (r *Registry) Register(c appprinting.Converter, sourceTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range sourceTypes {
		r.converters[NormalizeSourceType(t)] = c
	}
}

// Supports reports whether a converter is registered for sourceType
func (r *Registry) Supports(sourceType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.converters[NormalizeSourceType(sourceType)]
	return ok
}

// Convert implements Converter
func (r *Registry) Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error) {
	key := NormalizeSourceType(sourceType)
	r.mu.RLock()
	c, ok := r.converters[key]
	r.mu.RUnlock()
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("unsupported file type %q", sourceType))
	}
	if len(src) == 0 {
		return nil, shared.NewValidationError("source file is empty")
	}

	start := time.Now()
	out, err := c.Convert(ctx, src, key)
	if err != nil {
		r.logger.Warn("Conversion failed", zap.String("source_type", key), zap.Error(err))
		return nil, err
	}
	r.logger.Info("Converted document",
		zap.String("source_type", key),
		zap.Int("input_bytes", len(src)),
		zap.Int("output_bytes", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}
