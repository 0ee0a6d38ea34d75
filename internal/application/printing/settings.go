package printing

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

// Settings holds the policy values used by the print services
type Settings struct {
	ReceiptTTL        time.Duration
	ConfirmationTTL   time.Duration
	FinalPathPrefix   string
	DraftPathPrefix   string
	DefaultPriceBW    decimal.Decimal
	DefaultPriceColor decimal.Decimal
	CleanupBatchSize  int
}

// DefaultSettings returns the settings used when no configuration is supplied
func DefaultSettings() Settings {
	return Settings{
		ReceiptTTL:        15 * 24 * time.Hour,
		ConfirmationTTL:   7 * 24 * time.Hour,
		FinalPathPrefix:   "final_invoices",
		DraftPathPrefix:   "user-uploads",
		DefaultPriceBW:    printing.DefaultPriceBW,
		DefaultPriceColor: printing.DefaultPriceColor,
		CleanupBatchSize:  100,
	}
}

// SettingsFromConfig builds Settings from the loaded configuration
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	s := DefaultSettings()
	if cfg == nil {
		return s, nil
	}
	if cfg.Finalize.ReceiptTTL > 0 {
		s.ReceiptTTL = cfg.Finalize.ReceiptTTL
	}
	if cfg.Finalize.ConfirmationTTL > 0 {
		s.ConfirmationTTL = cfg.Finalize.ConfirmationTTL
	}
	if cfg.Finalize.FinalPathPrefix != "" {
		s.FinalPathPrefix = cfg.Finalize.FinalPathPrefix
	}
	if cfg.Finalize.DraftPathPrefix != "" {
		s.DraftPathPrefix = cfg.Finalize.DraftPathPrefix
	}
	if cfg.Cleanup.BatchSize > 0 {
		s.CleanupBatchSize = cfg.Cleanup.BatchSize
	}
	if cfg.Pricing.DefaultBW != "" {
		bw, err := decimal.NewFromString(cfg.Pricing.DefaultBW)
		if err != nil {
			return s, fmt.Errorf("invalid pricing.default_bw: %w", err)
		}
		s.DefaultPriceBW = bw
	}
	if cfg.Pricing.DefaultColor != "" {
		color, err := decimal.NewFromString(cfg.Pricing.DefaultColor)
		if err != nil {
			return s, fmt.Errorf("invalid pricing.default_color: %w", err)
		}
		s.DefaultPriceColor = color
	}
	return s, nil
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.ReceiptTTL <= 0 {
		s.ReceiptTTL = d.ReceiptTTL
	}
	if s.ConfirmationTTL <= 0 {
		s.ConfirmationTTL = d.ConfirmationTTL
	}
	if s.FinalPathPrefix == "" {
		s.FinalPathPrefix = d.FinalPathPrefix
	}
	if s.DraftPathPrefix == "" {
		s.DraftPathPrefix = d.DraftPathPrefix
	}
	if s.CleanupBatchSize <= 0 {
		s.CleanupBatchSize = d.CleanupBatchSize
	}
	return s
}

// Object paths are never reused: every upload gets a fresh random component.

func (s Settings) originalPath(userID uuid.UUID, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(s.DraftPathPrefix, userID.String(), name)
}

func (s Settings) convertedPath(d *printing.Draft) string {
	return path.Join(s.DraftPathPrefix, d.UserID.String(), d.ID.String(), uuid.NewString()+".pdf")
}

func (s Settings) finalPath(job *printing.PrintJob) string {
	return path.Join(s.FinalPathPrefix, fmt.Sprintf("final_%s_%s.pdf", job.ID, uuid.NewString()))
}
