package conversion

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConverter struct {
	calls []string
	out   []byte
	err   error
}

func (c *recordingConverter) Convert(_ context.Context, src []byte, sourceType string) ([]byte, error) {
	c.calls = append(c.calls, sourceType)
	return c.out, c.err
}

func TestNormalizeSourceType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pdf", "pdf"},
		{".PDF", "pdf"},
		{"report.docx", "docx"},
		{"photo.JPEG", "jpg"},
		{"image/png", "png"},
		{"application/pdf", "pdf"},
		{"text/html; charset=utf-8", "html"},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "pptx"},
		{"index.htm", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSourceType(tt.in))
		})
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	office := &recordingConverter{out: []byte("%PDF-office")}
	r := NewRegistry(nil)
	r.Register(office, OfficeTypes...)

	out, err := r.Convert(context.Background(), []byte("doc"), "Letter.DOCX")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-office"), out)
	assert.Equal(t, []string{"docx"}, office.calls)
	assert.True(t, r.Supports("application/msword"))
	assert.False(t, r.Supports("zip"))
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Convert(context.Background(), []byte("x"), "archive.zip")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.False(t, shared.IsRetryable(err))
}

func TestRegistry_EmptySource(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&recordingConverter{}, "pdf")
	_, err := r.Convert(context.Background(), nil, "pdf")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegistry_PropagatesConverterError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&recordingConverter{err: shared.NewConversionError("docx", assert.AnError)}, "docx")
	_, err := r.Convert(context.Background(), []byte("x"), "docx")
	assert.ErrorIs(t, err, shared.ErrConversion)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPDFPassthrough(t *testing.T) {
	src := testutil.SamplePDF("one", "two")

	out, err := NewPDFPassthrough().Convert(context.Background(), src, "pdf")
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestPDFPassthrough_RejectsGarbage(t *testing.T) {
	_, err := NewPDFPassthrough().Convert(context.Background(), []byte("not a pdf"), "pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConversion)
}

func TestImageConverter_PNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := NewImageConverter().Convert(context.Background(), buf.Bytes(), "png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	n, err := NewPDFPassthrough().Convert(context.Background(), out, "pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, n)
}

func TestImageConverter_RejectsCorruptImage(t *testing.T) {
	_, err := NewImageConverter().Convert(context.Background(), []byte("\x89PNG broken"), "png")
	assert.ErrorIs(t, err, shared.ErrConversion)
}

// fakeSoffice writes a script that mimics "soffice --convert-to pdf --outdir DIR FILE"
func fakeSoffice(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestOfficeConverter_Success(t *testing.T) {
	// argument 6 is the output directory, 7 the input file
	script := fakeSoffice(t, `out="$6"; in="$7"; base=$(basename "$in"); printf '%%PDF-from-%s' "$base" > "$out/${base%.*}.pdf"`+"\n")
	c := NewOfficeConverter(OfficeConfig{SofficePath: script, TempDir: t.TempDir()})

	out, err := c.Convert(context.Background(), []byte("doc body"), "docx")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-from-source.docx", string(out))
}

func TestOfficeConverter_ScratchDirRemoved(t *testing.T) {
	tmp := t.TempDir()
	script := fakeSoffice(t, `printf '%%PDF' > "$6/source.pdf"`+"\n")
	c := NewOfficeConverter(OfficeConfig{SofficePath: script, TempDir: tmp})

	_, err := c.Convert(context.Background(), []byte("x"), "odt")
	require.NoError(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOfficeConverter_Failure(t *testing.T) {
	script := fakeSoffice(t, "echo boom >&2\nexit 3\n")
	c := NewOfficeConverter(OfficeConfig{SofficePath: script, TempDir: t.TempDir()})

	_, err := c.Convert(context.Background(), []byte("x"), "doc")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConversion)
	assert.True(t, shared.IsRetryable(err))
}

func TestOfficeConverter_NoOutput(t *testing.T) {
	script := fakeSoffice(t, "exit 0\n")
	c := NewOfficeConverter(OfficeConfig{SofficePath: script, TempDir: t.TempDir()})

	_, err := c.Convert(context.Background(), []byte("x"), "ppt")
	assert.ErrorIs(t, err, shared.ErrConversion)
}

func TestOfficeConverter_Timeout(t *testing.T) {
	script := fakeSoffice(t, "exec sleep 5\n")
	c := NewOfficeConverter(OfficeConfig{SofficePath: script, TempDir: t.TempDir(), Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.Convert(context.Background(), []byte("x"), "pptx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestWrapHTML(t *testing.T) {
	assert.Equal(t, "", wrapHTML("   "))
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapHTML(full))

	wrapped := wrapHTML("<p>hello</p>")
	assert.Contains(t, wrapped, "<body><p>hello</p></body>")
	assert.Contains(t, wrapped, `charset="UTF-8"`)
}

func TestHTMLConverter_EmptyInput(t *testing.T) {
	c := NewHTMLConverter(HTMLConfig{})
	defer c.Close()

	_, err := c.Convert(context.Background(), []byte("  "), "html")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
