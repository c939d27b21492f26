package translate

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderDeepL  = "deepl"
	ProviderOpenAI = "openai"
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (deepl, openai).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the model identifier (OpenAI-compatible providers only).
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderDeepL: {
			ID:      ProviderDeepL,
			Name:    "DeepL",
			BaseURL: DeepLAPIBase,
			Timeout: 30 * time.Second,
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
	}
}

// ProviderIDs returns the sorted known provider identifiers.
func ProviderIDs() []string {
	defs := DefaultProviders()
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveProvider returns the default configuration for a provider ID.
func ResolveProvider(id string) (Provider, error) {
	prov, ok := DefaultProviders()[id]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (valid: %s)",
			id, strings.Join(ProviderIDs(), ", "))
	}
	return prov, nil
}

// NewClient builds the translation client for a provider configuration.
// Unknown IDs are treated as OpenAI-compatible endpoints.
func NewClient(prov Provider) Client {
	switch prov.ID {
	case ProviderDeepL:
		return NewDeepLClient(prov)
	default:
		return NewOpenAIClient(prov)
	}
}

// ---------------------------------------------------------------------------
// HTTP plumbing shared by the clients
// ---------------------------------------------------------------------------

// makeHTTPClient builds an HTTP client with proxy support. An explicit
// proxy URL wins; otherwise HTTP_PROXY/HTTPS_PROXY env vars apply.
func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// statusErr drains a failed response into a classifiable error: 429
// becomes a *RetryAfterError carrying the provider's delay, everything
// else a *StatusError with a truncated body.
func statusErr(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RetryAfterError{Delay: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	return &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 500)}
}

// parseRetryAfter interprets a Retry-After header value in seconds.
// Returns the default pause (60s + 5s buffer) when absent or malformed.
func parseRetryAfter(header string) time.Duration {
	const defaultDelay = 65 * time.Second

	if header == "" {
		return defaultDelay
	}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64); err == nil && secs > 0 {
		return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
	}
	return defaultDelay
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
