package pdf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/printshop/backend/internal/domain/document"
)

const (
	// glyphWidth is the advance, as a fraction of the font size, assumed for
	// simple fonts that do not declare /Widths
	glyphWidth = 0.5

	// spaceGap and breakGap are fractions of the font size. A gap wider
	// than spaceGap between two glyphs reads as a space, a gap wider than
	// breakGap starts a new fragment.
	spaceGap = 0.15
	breakGap = 1.0
)

// pageFragments reads the positioned text of every page from a snapshot of
// the current document
func (d *Document) pageFragments() (map[int][]document.TextFragment, error) {
	data, err := d.textSnapshot()
	if err != nil {
		return nil, err
	}
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open text reader: %w", err)
	}

	out := make(map[int][]document.TextFragment, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			out[i-1] = nil
			continue
		}
		glyphs, err := pageGlyphs(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		out[i-1] = assembleFragments(glyphs)
	}
	return out, nil
}

// textSnapshot serializes a copy of the document prepared for the text
// reader: every page's content is merged into one stream, and simple fonts
// without /Widths get a uniform width table so glyph advances and the gaps
// left by spaces are visible. The document itself is not touched.
func (d *Document) textSnapshot() ([]byte, error) {
	data, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	snap, err := d.loader.read(data)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}

	for _, entry := range snap.XRefTable.Table {
		if entry == nil || entry.Free {
			continue
		}
		if dict, ok := entry.Object.(types.Dict); ok {
			fillWidths(dict)
		}
	}

	for nr := 1; nr <= snap.PageCount; nr++ {
		page, _, _, err := snap.PageDict(nr, false)
		if err != nil {
			return nil, err
		}
		r, err := pdfcpu.ExtractPageContent(snap, nr)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d content: %w", nr, err)
		}
		if page == nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		sd, err := snap.NewStreamDictForBuf(content)
		if err != nil {
			return nil, err
		}
		if err := sd.Encode(); err != nil {
			return nil, err
		}
		ref, err := snap.IndRefForNewObject(*sd)
		if err != nil {
			return nil, err
		}
		page["Contents"] = *ref
	}

	var buf bytes.Buffer
	if err := api.WriteContext(snap, &buf); err != nil {
		return nil, fmt.Errorf("failed to write text snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// fillWidths adds a uniform /Widths table to simple font dictionaries found
// in dict or nested in it and returns how many it changed
func fillWidths(dict types.Dict) int {
	n := 0
	if isSimpleFont(dict) {
		if _, found := dict.Find("Widths"); !found {
			widths := make(types.Array, 256)
			for i := range widths {
				widths[i] = types.Integer(glyphWidth * 1000)
			}
			dict["FirstChar"] = types.Integer(0)
			dict["LastChar"] = types.Integer(255)
			dict["Widths"] = widths
			n++
		}
	}
	for _, v := range dict {
		if sub, ok := v.(types.Dict); ok {
			n += fillWidths(sub)
		}
	}
	return n
}

func isSimpleFont(dict types.Dict) bool {
	if t := dict.NameEntry("Type"); t == nil || *t != "Font" {
		return false
	}
	switch st := dict.NameEntry("Subtype"); {
	case st == nil:
		return false
	case *st == "Type1", *st == "TrueType", *st == "MMType1":
		return true
	}
	return false
}

// pageGlyphs returns the glyphs shown on page in content stream order. The
// reader panics on malformed content, which is reported as an error.
func pageGlyphs(page lpdf.Page) (glyphs []lpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// assembleFragments joins consecutive glyphs on the same baseline and at
// the same size into fragments. Spaces are not reported as glyphs, so they
// are restored from the gaps between neighbours.
func assembleFragments(glyphs []lpdf.Text) []document.TextFragment {
	var (
		out  []document.TextFragment
		cur  *document.TextFragment
		text []byte
		end  float64
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = string(text)
		cur.Width = end - cur.X
		out = append(out, *cur)
		cur, text = nil, nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := g.FontSize
		advance := g.W
		if advance <= 0 {
			advance = glyphWidth * size * float64(utf8.RuneCountInString(g.S))
		}

		if cur != nil && sameLine(*cur, g) {
			gap := g.X - end
			if gap >= -spaceGap*size && gap <= breakGap*size {
				if gap > spaceGap*size {
					text = append(text, ' ')
				}
				text = append(text, g.S...)
				end = math.Max(end, g.X+advance)
				continue
			}
		}

		flush()
		cur = &document.TextFragment{X: g.X, Y: g.Y, Height: size}
		text = append(text, g.S...)
		end = g.X + advance
	}
	flush()
	return out
}

func sameLine(f document.TextFragment, g lpdf.Text) bool {
	return math.Abs(f.Y-g.Y) < 0.5 && math.Abs(f.Height-g.FontSize) < 0.01
}
