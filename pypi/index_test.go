package pypi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simplePage = `<!DOCTYPE html>
<html>
  <head><title>Simple index</title></head>
  <body>
    <a href="/simple/aexpy/">aexpy</a>
    <a href="/simple/requests/">requests</a>
    <a href="/simple/six/">
      six
    </a>
    <a href="/simple/requests/">requests</a>
    <a href="/simple/empty/"></a>
    <a href="https://example.com/?q=1">skipped</a>
  </body>
</html>`

func TestParseIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"aexpy", "requests", "six"}, ParseIndex(simplePage))
	assert.Empty(t, ParseIndex("<html></html>"))
}

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(simplePage))
	}))
	defer srv.Close()

	names, err := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aexpy", "requests", "six"}, names)
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
	assert.Error(t, err)
}

func TestNewFetcherDefaults(t *testing.T) {
	t.Parallel()

	f := NewFetcher("", 0)
	assert.Equal(t, DefaultIndexURL, f.URL)
	assert.Equal(t, DefaultTimeout, f.Client.Timeout)
}
