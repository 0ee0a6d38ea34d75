package receipt

import (
	"context"
	"time"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"go.uber.org/zap"
)

// htmlSourceType selects the HTML converter in the conversion registry
const htmlSourceType = "html"

// Ensure Renderer implements ReceiptRenderer
var _ appprinting.ReceiptRenderer = (*Renderer)(nil)

// Renderer fills the receipt template and prints it to PDF through the
// HTML converter
type Renderer struct {
	engine    *TemplateEngine
	converter appprinting.Converter
	logger    *zap.Logger
}

// NewRenderer creates a Renderer
func NewRenderer(engine *TemplateEngine, converter appprinting.Converter, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{engine: engine, converter: converter, logger: logger}
}

// RenderReceipt implements ReceiptRenderer
func (r *Renderer) RenderReceipt(ctx context.Context, doc appprinting.ReceiptDocument) ([]byte, error) {
	start := time.Now()
	html, err := r.engine.Render(doc)
	if err != nil {
		return nil, err
	}
	data, err := r.converter.Convert(ctx, []byte(html), htmlSourceType)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Rendered receipt",
		zap.String("receipt_id", doc.Receipt.ID.String()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}
