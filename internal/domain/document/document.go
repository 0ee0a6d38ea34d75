// Package document applies editor instructions (rotate, delete, reorder,
// add and replace text) to a loaded PDF document.
package document

import "context"

// Rect is an axis-aligned box in PDF user space (origin bottom-left)
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// TextFragment is a run of text shown on a page together with its placement.
// Height is zero when the producer could not determine it.
type TextFragment struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Bounds returns the fragment's bounding box
func (f TextFragment) Bounds() Rect {
	return Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// Document is a mutable, loaded document. Page indices are 0-based and refer
// to the document's current page order.
type Document interface {
	PageCount() int

	// RotatePage adds degrees (a multiple of 90) to the page's rotation
	RotatePage(index, degrees int) error

	// DrawText draws text with its baseline origin at (x, y)
	DrawText(index int, text string, x, y, size float64) error

	// MaskRect paints an opaque white box over r
	MaskRect(index int, r Rect) error

	// TextFragments lists the text runs shown on a page
	TextFragments(index int) ([]TextFragment, error)

	// Rebuild replaces the document with a fresh one containing the pages
	// at the given indices, in that order
	Rebuild(order []int) error

	// Bytes serializes the document
	Bytes() ([]byte, error)
}

// Loader parses raw bytes into a Document
type Loader interface {
	Load(ctx context.Context, data []byte) (Document, error)
}
