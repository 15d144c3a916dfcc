package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

// getBrowser finds a Chrome or Chromium binary for chromedp
func getBrowser() (string, error) {
	browsers := []string{"chromium", "chromium-browser", "google-chrome", "chrome"}
	for _, browser := range browsers {
		if path, err := exec.LookPath(browser); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no suitable browser found")
}

func TestIsAddressInUse(t *testing.T) {
	if isAddressInUse(nil) {
		t.Error("nil error is not address in use")
	}
	if !isAddressInUse(errors.New("listen tcp :8000: bind: address already in use")) {
		t.Error("expected bind error to be detected")
	}
	if isAddressInUse(errors.New("permission denied")) {
		t.Error("unexpected match for permission error")
	}
}

// TestFrontendTitles loads pages in a headless browser and checks the document title
func TestFrontendTitles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	browserPath, err := getBrowser()
	if err != nil {
		t.Skip("No Chrome or Chromium found, skipping browser test")
	}
	t.Logf("Using browser: %s", browserPath)

	e, _ := setupTestServer(t)

	// Start server in background
	testPort := "8999"
	go func() {
		if err := e.Start(fmt.Sprintf("127.0.0.1:%s", testPort)); err != nil && err != http.ErrServerClosed {
			t.Logf("Server stopped: %v", err)
		}
	}()
	defer e.Shutdown(context.Background())

	// Give server time to start
	time.Sleep(time.Second)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browserPath),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tests := []struct {
		path string
		want string
	}{
		{"/", "Home - AexPy"},
		{"/view", "View - AexPy"},
		{"/projects/aexpy", "Projects - AexPy"},
		{"/projects/aexpy/0.3.0&0.4.0", "Reports - AexPy"},
		{"/no/such/page", "Not Found - AexPy"},
	}
	for _, tt := range tests {
		var title string
		err := chromedp.Run(ctx,
			chromedp.Navigate(fmt.Sprintf("http://127.0.0.1:%s%s", testPort, tt.path)),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Title(&title),
		)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", tt.path, err)
		}
		if title != tt.want {
			t.Errorf("%s: expected title %q, got %q", tt.path, tt.want, title)
		}
	}
}
