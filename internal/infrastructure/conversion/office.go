package conversion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultSofficeTimeout = 2 * time.Minute

// OfficeConfig configures the LibreOffice converter
type OfficeConfig struct {
	// SofficePath is the soffice binary, looked up on PATH when relative
	SofficePath string
	Timeout     time.Duration
	// TempDir is where scratch directories are created; empty uses os.TempDir
	TempDir string
	Logger  *zap.Logger
}

// OfficeConverter converts office documents by running soffice headless
type OfficeConverter struct {
	config OfficeConfig
	logger *zap.Logger
}

// NewOfficeConverter creates an OfficeConverter
func NewOfficeConverter(cfg OfficeConfig) *OfficeConverter {
	if cfg.SofficePath == "" {
		cfg.SofficePath = "soffice"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSofficeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfficeConverter{config: cfg, logger: logger}
}

// Convert implements Converter. Each call runs in its own scratch directory
// which is removed afterwards.
func (c *OfficeConverter) Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error) {
	dir, err := os.MkdirTemp(c.config.TempDir, "convert-*")
	if err != nil {
		return nil, shared.NewConversionError(sourceType, fmt.Errorf("failed to create scratch directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("Failed to remove scratch directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	input := filepath.Join(dir, "source."+sourceType)
	if err := os.WriteFile(input, src, 0o600); err != nil {
		return nil, shared.NewConversionError(sourceType, fmt.Errorf("failed to write source: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.config.SofficePath,
		"--headless", "--norestore", "--convert-to", "pdf", "--outdir", dir, input)
	// a private profile lets concurrent conversions run side by side
	cmd.Env = append(os.Environ(), "HOME="+dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, shared.NewConversionError(sourceType,
				fmt.Errorf("soffice timed out after %v", c.config.Timeout))
		}
		c.logger.Warn("soffice failed", zap.String("stderr", stderr.String()), zap.Error(err))
		return nil, shared.NewConversionError(sourceType, fmt.Errorf("soffice failed: %w", err))
	}

	out, err := os.ReadFile(filepath.Join(dir, "source.pdf"))
	if err != nil {
		return nil, shared.NewConversionError(sourceType, fmt.Errorf("soffice produced no output: %w", err))
	}
	return out, nil
}
