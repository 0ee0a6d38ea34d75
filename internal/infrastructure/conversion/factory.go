package conversion

import (
	"github.com/printshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Source types handled by each converter
var (
	PDFTypes    = []string{"pdf"}
	ImageTypes  = []string{"jpg", "jpeg", "png"}
	OfficeTypes = []string{"doc", "docx", "ppt", "pptx", "odt"}
	HTMLTypes   = []string{"html", "htm"}
)

// New builds the registry with every converter wired from configuration.
// The returned close function releases the browser allocator.
func New(cfg config.ConversionConfig, logger *zap.Logger) (*Registry, func() error) {
	r := NewRegistry(logger)
	r.Register(NewPDFPassthrough(), PDFTypes...)
	r.Register(NewImageConverter(), ImageTypes...)
	r.Register(NewOfficeConverter(OfficeConfig{
		SofficePath: cfg.SofficePath,
		Timeout:     cfg.SofficeTimeout,
		TempDir:     cfg.TempDir,
		Logger:      logger,
	}), OfficeTypes...)

	html := NewHTMLConverter(HTMLConfig{
		Timeout:   cfg.ChromeTimeout,
		NoSandbox: true,
		Logger:    logger,
	})
	r.Register(html, HTMLTypes...)
	return r, html.Close
}
