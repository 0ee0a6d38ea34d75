package printing

import (
	"fmt"
	"time"

	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default per-page prices used when a shop has not configured its own
var (
	DefaultPriceBW    = decimal.NewFromInt(2)
	DefaultPriceColor = decimal.NewFromInt(8)
)

// Shop is a print shop accepting jobs
type Shop struct {
	shared.BaseEntity
	Name       string
	Location   string
	IsOpen     bool
	PriceBW    decimal.Decimal
	PriceColor decimal.Decimal
}

// PricePerPage returns the shop's per-page price for the color mode
func (s *Shop) PricePerPage(mode ColorMode) decimal.Decimal {
	if mode == ColorModeColor {
		if s.PriceColor.IsPositive() {
			return s.PriceColor
		}
		return DefaultPriceColor
	}
	if s.PriceBW.IsPositive() {
		return s.PriceBW
	}
	return DefaultPriceBW
}

// Quote prices a job: pages x price per page x copies
func (s *Shop) Quote(pageCount int, options PrintOptions) decimal.Decimal {
	options = options.Normalized()
	return s.PricePerPage(options.Color).
		Mul(decimal.NewFromInt(int64(pageCount))).
		Mul(decimal.NewFromInt(int64(options.Copies)))
}

// EnsureAcceptingJobs returns ForbiddenError when the shop is closed
func (s *Shop) EnsureAcceptingJobs() error {
	if !s.IsOpen {
		return shared.NewForbiddenError("this shop is currently closed, please select another shop")
	}
	return nil
}

// QueueDay returns the start of the UTC day used for per-shop queue numbering
func QueueDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewShop creates an open shop with the given prices
func NewShop(name, location string, priceBW, priceColor decimal.Decimal) *Shop {
	return &Shop{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Location:   location,
		IsOpen:     true,
		PriceBW:    priceBW,
		PriceColor: priceColor,
	}
}

// WithFallbackPrices returns a copy of the shop whose unset prices are
// replaced by bw and color
func (s *Shop) WithFallbackPrices(bw, color decimal.Decimal) *Shop {
	c := *s
	if !c.PriceBW.IsPositive() && bw.IsPositive() {
		c.PriceBW = bw
	}
	if !c.PriceColor.IsPositive() && color.IsPositive() {
		c.PriceColor = color
	}
	return &c
}

// SetOpen opens or closes the shop for new jobs. Jobs already placed are
// unaffected.
func (s *Shop) SetOpen(open bool) {
	if s.IsOpen == open {
		return
	}
	s.IsOpen = open
	s.Touch()
}

// UpdatePrices replaces the per-page prices. A nil price keeps the current
// one and zero falls back to the default price when quoting.
func (s *Shop) UpdatePrices(bw, color *decimal.Decimal) error {
	if bw == nil && color == nil {
		return shared.NewValidationError("at least one of price_bw_a4, price_color_a4 is required")
	}
	for _, p := range []*decimal.Decimal{bw, color} {
		if p != nil && p.IsNegative() {
			return shared.NewValidationError(fmt.Sprintf("price must not be negative, got %s", p.String()))
		}
	}
	if bw != nil {
		s.PriceBW = *bw
	}
	if color != nil {
		s.PriceColor = *color
	}
	s.Touch()
	return nil
}
