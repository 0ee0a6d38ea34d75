// Package pdf adapts pdfcpu to the document engine.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// overlayFont is the resource name used for text drawn by this package
const overlayFont = "PSOverlay"

// Loader parses PDF bytes with pdfcpu
type Loader struct {
	conf   *model.Configuration
	logger *zap.Logger
}

var _ document.Loader = (*Loader)(nil)

// NewLoader creates a Loader with relaxed validation
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Loader{conf: conf, logger: logger}
}

// Load implements document.Loader
func (l *Loader) Load(ctx context.Context, data []byte) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdfCtx, err := l.read(data)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "file is not a readable PDF", err)
	}
	l.logger.Debug("Loaded PDF", zap.Int("pages", pdfCtx.PageCount), zap.Int("size", len(data)))
	return &Document{ctx: pdfCtx, loader: l, wrapped: make(map[int]bool)}, nil
}

// PageCount returns the number of pages in data
func (l *Loader) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), l.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

func (l *Loader) read(data []byte) (*model.Context, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), l.conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, err
	}
	return pdfCtx, nil
}

// Document is a pdfcpu-backed document.Document. Page edits are written
// into the page dictionaries of the loaded context; Rebuild round-trips
// through pdfcpu's page collection.
type Document struct {
	ctx    *model.Context
	loader *Loader
	// wrapped holds page indices whose original content is already enclosed in q/Q
	wrapped map[int]bool
	// fragments caches extracted text per page until the page content changes
	fragments map[int][]document.TextFragment
}

var _ document.Document = (*Document)(nil)

// PageCount implements document.Document
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

func (d *Document) pageDict(index int) (types.Dict, *model.InheritedPageAttrs, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, nil, fmt.Errorf("page index %d out of range", index)
	}
	dict, _, inh, err := d.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, nil, err
	}
	if dict == nil {
		return nil, nil, fmt.Errorf("page %d has no dictionary", index+1)
	}
	return dict, inh, nil
}

// RotatePage implements document.Document
func (d *Document) RotatePage(index, degrees int) error {
	dict, inh, err := d.pageDict(index)
	if err != nil {
		return err
	}
	current := 0
	if own := dict.IntEntry("Rotate"); own != nil {
		current = *own
	} else if inh != nil {
		current = inh.Rotate
	}
	rotation := ((current+degrees)%360 + 360) % 360
	dict["Rotate"] = types.Integer(rotation)
	return nil
}

// DrawText implements document.Document
func (d *Document) DrawText(index int, text string, x, y, size float64) error {
	dict, inh, err := d.pageDict(index)
	if err != nil {
		return err
	}
	if err := d.ensureFont(dict, inh); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "q BT /%s %s Tf 0 g %s %s Td (%s) Tj ET Q\n",
		overlayFont, num(size), num(x), num(y), escapeText(text))
	return d.appendContent(index, dict, b.String())
}

// MaskRect implements document.Document. The box is extended below the
// baseline to cover descenders.
func (d *Document) MaskRect(index int, r document.Rect) error {
	dict, _, err := d.pageDict(index)
	if err != nil {
		return err
	}
	descent := r.Height * 0.25
	content := fmt.Sprintf("q 1 g %s %s %s %s re f Q\n",
		num(r.X-1), num(r.Y-descent), num(r.Width+2), num(r.Height+descent+1))
	return d.appendContent(index, dict, content)
}

// TextFragments implements document.Document
func (d *Document) TextFragments(index int) ([]document.TextFragment, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	if frags, ok := d.fragments[index]; ok {
		return frags, nil
	}
	frags, err := d.pageFragments()
	if err != nil {
		return nil, fmt.Errorf("failed to extract page text: %w", err)
	}
	d.fragments = frags
	return frags[index], nil
}

// Rebuild implements document.Document
func (d *Document) Rebuild(order []int) error {
	if len(order) == 0 {
		return shared.NewValidationError("a document needs at least one page")
	}
	pages := make([]string, len(order))
	for i, idx := range order {
		if idx < 0 || idx >= d.ctx.PageCount {
			return fmt.Errorf("page index %d out of range", idx)
		}
		pages[i] = strconv.Itoa(idx + 1)
	}

	current, err := d.Bytes()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := api.Collect(bytes.NewReader(current), &out, pages, d.loader.conf); err != nil {
		return fmt.Errorf("failed to collect pages: %w", err)
	}
	rebuilt, err := d.loader.read(out.Bytes())
	if err != nil {
		return fmt.Errorf("failed to read rebuilt document: %w", err)
	}
	d.ctx = rebuilt
	d.wrapped = make(map[int]bool)
	d.fragments = nil
	return nil
}

// Bytes implements document.Document
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// appendContent adds a content stream after the page's existing content.
// The first append wraps the original content in q/Q so its graphics state
// does not leak into the overlay.
func (d *Document) appendContent(index int, page types.Dict, content string) error {
	existing, err := d.contentRefs(page)
	if err != nil {
		return err
	}

	var refs types.Array
	if !d.wrapped[index] && len(existing) > 0 {
		open, err := d.newStream("q\n")
		if err != nil {
			return err
		}
		refs = append(refs, *open)
		refs = append(refs, existing...)
		content = "Q\n" + content
		d.wrapped[index] = true
	} else {
		refs = append(refs, existing...)
	}

	ref, err := d.newStream(content)
	if err != nil {
		return err
	}
	page["Contents"] = append(refs, *ref)
	delete(d.fragments, index)
	return nil
}

func (d *Document) contentRefs(page types.Dict) (types.Array, error) {
	obj, found := page.Find("Contents")
	if !found || obj == nil {
		return nil, nil
	}
	switch v := obj.(type) {
	case types.IndirectRef:
		deref, err := d.ctx.Dereference(v)
		if err != nil {
			return nil, err
		}
		if arr, ok := deref.(types.Array); ok {
			return append(types.Array(nil), arr...), nil
		}
		return types.Array{v}, nil
	case types.Array:
		return append(types.Array(nil), v...), nil
	default:
		return nil, fmt.Errorf("unexpected page contents type %T", obj)
	}
}

func (d *Document) newStream(content string) (*types.IndirectRef, error) {
	sd, err := d.ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return d.ctx.IndRefForNewObject(*sd)
}

// ensureFont registers a standard Helvetica font under overlayFont in the
// page resources, materializing inherited resources onto the page first.
func (d *Document) ensureFont(page types.Dict, inh *model.InheritedPageAttrs) error {
	var res types.Dict
	if obj, found := page.Find("Resources"); found && obj != nil {
		dict, err := d.ctx.DereferenceDict(obj)
		if err != nil {
			return err
		}
		res = dict
	}
	if res == nil {
		res = types.Dict{}
		if inh != nil {
			for k, v := range inh.Resources {
				res[k] = v
			}
		}
		page["Resources"] = res
	}

	var fonts types.Dict
	if obj, found := res.Find("Font"); found && obj != nil {
		dict, err := d.ctx.DereferenceDict(obj)
		if err != nil {
			return err
		}
		fonts = dict
	}
	if fonts == nil {
		fonts = types.Dict{}
		res["Font"] = fonts
	}
	if _, ok := fonts[overlayFont]; ok {
		return nil
	}
	fonts[overlayFont] = types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	return nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// escapeText encodes s as the body of a PDF literal string. Characters
// outside Latin-1 are replaced since the overlay font is single-byte.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
			continue
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
