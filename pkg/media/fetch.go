package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const userAgent = "poc-pipeline/1.0 (compatible; Go)"

// Fetcher retrieves the raw bytes behind a resolved src. Implementations
// decide how to interpret src (http(s) URL, filesystem path, data URI).
type Fetcher interface {
	Fetch(src string) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(src string) ([]byte, error)

func (f FetcherFunc) Fetch(src string) ([]byte, error) { return f(src) }

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// HTTPFetcher fetches http(s) URLs via GET, falling back to reading src
// as a local file path for anything else — grounded on std/net's Fetch
// plus pkg/images/loader.go's NewFilesystemFetcher, merged into one
// Fetcher since the media store no longer distinguishes them by caller.
var HTTPFetcher Fetcher = FetcherFunc(func(src string) ([]byte, error) {
	if !IsNetworkURL(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", src, err)
		}
		return data, nil
	}

	req, err := http.NewRequest(http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, src)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
})

// IsNetworkURL reports whether s looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ResolveURL resolves ref against base per spec §6: a scheme-qualified
// ref passes through unchanged; otherwise base and ref are concatenated,
// normalizing at most one joining slash. This is deliberately simpler
// than net/url's ResolveReference (no "..", no query/fragment handling) —
// the spec defines this exact, narrower algorithm.
func ResolveURL(base, ref string) string {
	if isSchemeQualified(ref) {
		return ref
	}
	if base == "" {
		return ref
	}
	baseTrimmed := strings.TrimSuffix(base, "/")
	refTrimmed := strings.TrimPrefix(ref, "/")
	return baseTrimmed + "/" + refTrimmed
}

func isSchemeQualified(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return false
	}
	scheme := s[:idx]
	for i, c := range scheme {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isSymbol := c == '+' || c == '-' || c == '.'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit && !isSymbol {
			return false
		}
	}
	return true
}
