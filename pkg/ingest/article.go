package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

// DefaultMaxBodyBytes bounds fetched HTML.
const DefaultMaxBodyBytes = 10 << 20

// ErrBodyTooLarge is returned when a page exceeds FetchOptions.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Article is the readable text of a web page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	URL      string
	Text     string
}

// FetchOptions controls FetchArticle.
type FetchOptions struct {
	UserAgent    string
	MaxBodyBytes int64
}

var (
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby drops <rt> and <rp> elements so ruby readings do not end up
// glued to the base text ("漢字かんじ").
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}

// FetchArticle downloads rawURL and extracts its main text.
func FetchArticle(ctx context.Context, client *http.Client, rawURL string, opts FetchOptions) (Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Article{}, fmt.Errorf("fetch %q: not an http(s) url", rawURL)
	}
	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch %q: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > limit {
		return Article{}, fmt.Errorf("fetch %q: %w (%d bytes)", rawURL, ErrBodyTooLarge, resp.ContentLength)
	}

	// One byte past the limit tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Article{}, fmt.Errorf("read %q: %w", rawURL, err)
	}
	if int64(len(body)) > limit {
		return Article{}, fmt.Errorf("fetch %q: %w (limit %d bytes)", rawURL, ErrBodyTooLarge, limit)
	}

	parsed, err := readability.FromReader(bytes.NewReader(SanitizeRuby(body)), u)
	if err != nil {
		return Article{}, fmt.Errorf("extract %q: %w", rawURL, err)
	}
	return Article{
		Title:    strings.TrimSpace(parsed.Title),
		Byline:   strings.TrimSpace(parsed.Byline),
		SiteName: parsed.SiteName,
		URL:      u.String(),
		Text:     strings.TrimSpace(parsed.TextContent),
	}, nil
}
