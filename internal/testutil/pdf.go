package testutil

import (
	"bytes"
	"fmt"
)

// BuildPDF writes a minimal valid PDF with one page per content string.
// Each page uses Helvetica as /F1 on a US Letter media box.
func BuildPDF(contents ...string) []byte {
	n := len(contents)

	// 1 catalog, 2 pages, 3 font, then a page and a content stream per page
	var objects []string
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, c := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// PageText is a content stream showing label at the top left of a page
func PageText(label string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 700 Td (%s) Tj ET", label)
}

// SamplePDF is a document whose pages are labelled with the given strings
func SamplePDF(labels ...string) []byte {
	contents := make([]string, len(labels))
	for i, l := range labels {
		contents[i] = PageText(l)
	}
	return BuildPDF(contents...)
}
