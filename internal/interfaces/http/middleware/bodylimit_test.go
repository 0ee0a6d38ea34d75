package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadRouter mirrors the draft upload endpoint: it reads one multipart file
func uploadRouter(limit int64) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), BodyLimit(limit))
	r.POST("/drafts/upload", func(c *gin.Context) {
		if _, err := c.FormFile("file"); err != nil {
			c.String(http.StatusBadRequest, "unreadable upload")
			return
		}
		c.String(http.StatusCreated, "stored")
	})
	r.GET("/drafts", func(c *gin.Context) {
		c.String(http.StatusOK, "listed")
	})
	return r
}

func multipartUpload(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("%"), size))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name      string
		fileSize  int
		streaming bool
		want      int
	}{
		{name: "small upload passes", fileSize: 64, want: http.StatusCreated},
		{name: "declared length over the cap is rejected up front", fileSize: 4096, want: http.StatusRequestEntityTooLarge},
		{name: "chunked upload over the cap fails while reading", fileSize: 4096, streaming: true, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.fileSize)
			req := httptest.NewRequest(http.MethodPost, "/drafts/upload", body)
			req.Header.Set("Content-Type", contentType)
			if tt.streaming {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()

			uploadRouter(1024).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), dto.ErrCodePayloadTooLarge)
				assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))
			}
		})
	}

	t.Run("requests without a body are untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		uploadRouter(1).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drafts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
