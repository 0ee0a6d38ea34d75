package conversion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// A4 in inches, the unit Chrome's print API uses
const (
	a4WidthInches  = 210 / 25.4
	a4HeightInches = 297 / 25.4
	marginInches   = 10 / 25.4
)

// HTMLConfig configures the headless Chrome converter
type HTMLConfig struct {
	Timeout time.Duration
	// RemoteURL points at a running Chrome DevTools endpoint; empty launches a local browser
	RemoteURL string
	NoSandbox bool
	Logger    *zap.Logger
}

// HTMLConverter prints HTML to an A4 PDF through the Chrome DevTools Protocol
type HTMLConverter struct {
	config      HTMLConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewHTMLConverter creates the converter and its browser allocator. The
// browser itself starts lazily on the first conversion.
func NewHTMLConverter(cfg HTMLConfig) *HTMLConverter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &HTMLConverter{config: cfg, logger: logger}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	return c
}

// Convert implements Converter
func (c *HTMLConverter) Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error) {
	html := wrapHTML(string(src))
	if strings.TrimSpace(html) == "" {
		return nil, shared.NewValidationError("HTML content is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the browser tab to the caller's deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginRight(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, shared.NewConversionError(sourceType,
				fmt.Errorf("rendering timed out after %v: %w", c.config.Timeout, err))
		}
		return nil, shared.NewConversionError(sourceType, err)
	}
	if len(pdfData) == 0 {
		return nil, shared.NewConversionError(sourceType, errors.New("generated PDF is empty"))
	}
	return pdfData, nil
}

// Close releases the browser allocator
func (c *HTMLConverter) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

// wrapHTML wraps a fragment in a complete document
func wrapHTML(body string) string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return body
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>`)
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
