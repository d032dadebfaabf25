// Package webfetch fetches web pages and converts them to markdown for
// inclusion in prompts.
package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const maxMarkdownChars = 50000

// Fetcher fetches URLs and converts their HTML content to markdown.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a 30 second request timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithClient creates a Fetcher using the given HTTP client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Markdown fetches the URL and returns its content converted to markdown,
// truncated to a prompt-friendly size.
func (f *Fetcher) Markdown(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Hutch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	if len(md) > maxMarkdownChars {
		md = md[:maxMarkdownChars] + "\n\n[Content truncated]"
	}

	return md, nil
}
