package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupabase struct {
	mu       sync.Mutex
	requests []string
	auth     string
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.auth = r.Header.Get("Authorization")
	f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r.Body)

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.7 supabase")
	case http.MethodDelete:
		_, _ = io.WriteString(w, `[]`)
	default:
		_, _ = io.WriteString(w, `{"Key":"prints/drafts/a.pdf"}`)
	}
}

func TestSupabaseObjectStorage(t *testing.T) {
	fake := &fakeSupabase{}
	server := httptest.NewServer(fake)
	defer server.Close()

	store, err := NewSupabaseObjectStorage(server.URL+"/", "service-key", "prints", nil)
	require.NoError(t, err)
	assert.Equal(t, "prints", store.Bucket())
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "drafts/a.pdf", []byte("%PDF"), "application/pdf"))
	data, err := store.Download(ctx, "drafts/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 supabase", string(data))
	require.NoError(t, store.Delete(ctx, "drafts/a.pdf"))

	require.Len(t, fake.requests, 3)
	for _, req := range fake.requests {
		assert.True(t, strings.Contains(req, "/storage/v1/object"), req)
	}
	assert.Contains(t, fake.requests[0], "prints/drafts/a.pdf")
	assert.Equal(t, "Bearer service-key", fake.auth)
}

func TestNewSupabaseObjectStorage_Validation(t *testing.T) {
	_, err := NewSupabaseObjectStorage("", "k", "b", nil)
	assert.Error(t, err)
	_, err = NewSupabaseObjectStorage("http://x", "", "b", nil)
	assert.Error(t, err)
	_, err = NewSupabaseObjectStorage("http://x", "k", "", nil)
	assert.Error(t, err)
}
