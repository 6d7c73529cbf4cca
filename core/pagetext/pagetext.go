// Package pagetext extracts readable page content for prompt assembly: it
// fetches a URL and converts the HTML body to Markdown, which survives the
// trip through a language model far better than raw markup.
package pagetext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/askpage/askpage/internal/utils"
)

const (
	// DefaultTimeout is the default fetch timeout.
	DefaultTimeout = 30 * time.Second
	// MaxBodySize is the maximum response body size (10 MB).
	MaxBodySize = 10 * 1024 * 1024
	// defaultUserAgent identifies the fetcher to origin servers.
	defaultUserAgent = "askpage-fetch/1.0"
)

// Extractor fetches web pages and converts them to Markdown.
type Extractor struct {
	client *http.Client
}

// New returns an Extractor with a default HTTP client.
func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the HTTP client used for fetches and returns the
// extractor so calls can be chained.
func (e *Extractor) WithHTTPClient(httpClient *http.Client) *Extractor {
	e.client = httpClient
	return e
}

// Extract fetches pageURL and returns its content converted to Markdown.
// Partial URLs (e.g. "example.com/post") are normalised by prepending
// "https://". The body is capped at [MaxBodySize] bytes.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", fmt.Errorf("page URL cannot be empty")
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code fetching page: %d %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}
	if len(htmlBytes) == MaxBodySize {
		return "", fmt.Errorf("page body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return markdown, nil
}
