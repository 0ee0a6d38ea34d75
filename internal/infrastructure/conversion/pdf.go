package conversion

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/printshop/backend/internal/domain/shared"
)

// PDFPassthrough validates PDF input and returns it unchanged
type PDFPassthrough struct {
	conf *model.Configuration
}

// NewPDFPassthrough creates a passthrough with relaxed validation
func NewPDFPassthrough() *PDFPassthrough {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFPassthrough{conf: conf}
}

// Convert implements Converter
func (p *PDFPassthrough) Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := api.Validate(bytes.NewReader(src), p.conf); err != nil {
		return nil, shared.NewConversionError(sourceType, errors.Join(errors.New("invalid or corrupted PDF"), err))
	}
	return src, nil
}

// ImageConverter places each image on its own A4 page, scaled to fit and centered
type ImageConverter struct {
	conf *model.Configuration
}

// NewImageConverter creates an ImageConverter
func NewImageConverter() *ImageConverter {
	return &ImageConverter{conf: model.NewDefaultConfiguration()}
}

// Convert implements Converter
func (c *ImageConverter) Convert(ctx context.Context, src []byte, sourceType string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = types.PaperSize["A4"]
	imp.PageSize = "A4"
	imp.Pos = types.Center
	imp.Scale = 0.95

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{bytes.NewReader(src)}, imp, c.conf); err != nil {
		return nil, shared.NewConversionError(sourceType, err)
	}
	return out.Bytes(), nil
}
