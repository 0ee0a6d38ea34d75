package pdf

import (
	"context"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/printshop/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphs lays out s one glyph per rune at size, advancing by the uniform width
func glyphs(s string, x, y, size float64) []lpdf.Text {
	var out []lpdf.Text
	for _, r := range s {
		w := glyphWidth * size
		if r != ' ' {
			out = append(out, lpdf.Text{Font: "Helvetica", FontSize: size, X: x, Y: y, W: w, S: string(r)})
		}
		x += w
	}
	return out
}

func TestAssembleFragments(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []lpdf.Text
		want   []string
	}{
		{"single word", glyphs("Hello", 72, 700, 12), []string{"Hello"}},
		{"spaces restored from gaps", glyphs("Invoice 2023", 72, 700, 12), []string{"Invoice 2023"}},
		{"new line splits", append(glyphs("one", 72, 700, 12), glyphs("two", 72, 680, 12)...), []string{"one", "two"}},
		{"size change splits", append(glyphs("big", 72, 700, 18), glyphs("small", 99, 700, 9)...), []string{"big", "small"}},
		{"wide gap splits", append(glyphs("Total", 72, 700, 10), glyphs("42", 400, 700, 10)...), []string{"Total", "42"}},
		{"empty glyphs ignored", append([]lpdf.Text{{FontSize: 12, X: 1, Y: 1}}, glyphs("x", 72, 700, 12)...), []string{"x"}},
		{"nothing shown", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := assembleFragments(tt.glyphs)
			var got []string
			for _, f := range frags {
				got = append(got, f.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssembleFragments_Bounds(t *testing.T) {
	frags := assembleFragments(glyphs("ab cd", 100, 500, 10))
	require.Len(t, frags, 1)
	assert.InDelta(t, 100, frags[0].X, 0.001)
	assert.InDelta(t, 500, frags[0].Y, 0.001)
	assert.InDelta(t, 10, frags[0].Height, 0.001)
	assert.InDelta(t, 5*10*glyphWidth, frags[0].Width, 0.001)

	t.Run("zero width glyphs fall back to the estimate", func(t *testing.T) {
		frags := assembleFragments([]lpdf.Text{{FontSize: 20, X: 10, Y: 10, S: "W"}})
		require.Len(t, frags, 1)
		assert.InDelta(t, 20*glyphWidth, frags[0].Width, 0.001)
	})
}

func TestFillWidths(t *testing.T) {
	helvetica := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
	}
	measured := types.Dict{
		"Type":    types.Name("Font"),
		"Subtype": types.Name("TrueType"),
		"Widths":  types.Array{types.Integer(600)},
	}
	composite := types.Dict{
		"Type":    types.Name("Font"),
		"Subtype": types.Name("Type0"),
	}
	resources := types.Dict{
		"Font": types.Dict{"F1": helvetica, "F2": measured, "F3": composite},
	}

	assert.Equal(t, 1, fillWidths(types.Dict{"Resources": resources}))
	widths, ok := helvetica["Widths"].(types.Array)
	require.True(t, ok)
	assert.Len(t, widths, 256)
	assert.Equal(t, types.Integer(500), widths[0])
	assert.Len(t, measured["Widths"], 1, "declared widths are kept")
	assert.NotContains(t, composite, "Widths")
}

func TestDocument_TextFragments(t *testing.T) {
	loader := NewLoader(nil)
	doc, err := loader.Load(context.Background(), testutil.BuildPDF(
		testutil.PageText("Invoice 2023"),
		"BT /F1 12 Tf 72 700 Td (Line one) Tj 0 -20 Td (Line two) Tj ET",
	))
	require.NoError(t, err)

	first, err := doc.TextFragments(0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Invoice 2023", first[0].Text)
	assert.InDelta(t, 72, first[0].X, 0.01)
	assert.InDelta(t, 700, first[0].Y, 0.01)
	assert.InDelta(t, 12, first[0].Height, 0.01)
	assert.InDelta(t, 12*12*glyphWidth, first[0].Width, 0.01)

	second, err := doc.TextFragments(1)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Line one", second[0].Text)
	assert.Equal(t, "Line two", second[1].Text)
	assert.InDelta(t, 680, second[1].Y, 0.01)

	_, err = doc.TextFragments(2)
	assert.Error(t, err)
}

func TestDocument_TextFragmentsFollowEdits(t *testing.T) {
	doc, err := NewLoader(nil).Load(context.Background(), testutil.SamplePDF("A", "B"))
	require.NoError(t, err)

	before, err := doc.TextFragments(1)
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, doc.DrawText(1, "Stamped", 72, 72, 10))
	after, err := doc.TextFragments(1)
	require.NoError(t, err)
	var texts []string
	for _, f := range after {
		texts = append(texts, f.Text)
	}
	assert.Equal(t, []string{"B", "Stamped"}, texts)
}
