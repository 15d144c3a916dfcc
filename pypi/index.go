// Package pypi reads the list of project names from a PyPI simple index.
package pypi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// DefaultIndexURL is the public PyPI simple index.
const DefaultIndexURL = "https://pypi.org/simple/"

// DefaultTimeout bounds a single index request.
const DefaultTimeout = 60 * time.Second

// maxIndexBytes caps the downloaded page; the full index is a few tens of MB.
const maxIndexBytes = 256 << 20

var anchorPattern = regexp.MustCompile(`<a href="[\w:/\.]*">([\S\s]*?)</a>`)

// Fetcher downloads a simple index.
type Fetcher struct {
	URL    string
	Client *http.Client
}

// NewFetcher returns a Fetcher for url with the given request timeout.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultIndexURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Fetch requests the index and returns the project names in page order.
func (f *Fetcher) Fetch(ctx context.Context) ([]string, error) {
	Logger.Info("Requesting PyPI index", "url", f.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build index request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request index: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	names := ParseIndex(string(body))
	Logger.Info("PyPI index parsed", "projects", len(names))
	return names, nil
}

// ParseIndex extracts the anchor texts of a simple index page. Empty and
// duplicate names are dropped.
func ParseIndex(html string) []string {
	matches := anchorPattern.FindAllStringSubmatch(html, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
