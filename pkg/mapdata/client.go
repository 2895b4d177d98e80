package mapdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/httputil"
)

// DefaultBaseURL is the default map provider endpoint.
const DefaultBaseURL = "https://api-legacy.bubblemaps.io"

// Client fetches map documents from the holder-data provider.
// A zero-value Client is not usable; construct with [NewClient].
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for tests or custom
// transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a provider client for the given base URL.
// An empty baseURL uses [DefaultBaseURL].
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the provider's JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// FetchMap retrieves the map document for a token on a chain.
//
// Distinguished failure modes:
//   - UPSTREAM_ACCESS: the provider has not computed a map for this token
//     (the caller can suggest triggering on-demand computation)
//   - NOT_FOUND: the token is unknown on this chain
//   - NETWORK_ERROR: transient provider or transport failure (retried
//     internally with exponential backoff)
func (c *Client) FetchMap(ctx context.Context, token, chain string) (*Document, error) {
	chain, err := NormalizeChain(chain)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateTokenAddress(token); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/map-data?token=%s&chain=%s",
		c.baseURL, url.QueryEscape(token), url.QueryEscape(chain))

	var doc *Document
	fetch := func() error {
		var ferr error
		doc, ferr = c.fetchOnce(ctx, endpoint, token, chain)
		return ferr
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint, token, chain string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch map for %s on %s", token, chain),
		}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, token, chain); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMapData, err, "decode map document")
	}
	return &doc, nil
}

// checkStatus maps HTTP status codes to the error taxonomy. The provider
// signals "map not yet computed" with a 401/403 and an error body mentioning
// computation; that outcome must stay distinguishable from generic failures.
func (c *Client) checkStatus(resp *http.Response, token, chain string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeUpstreamAccess,
			"map not computed for %s on %s: %s", token, chain, readErrorMessage(resp.Body))

	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "token %s not found on %s", token, chain)

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "provider returned HTTP %d", resp.StatusCode),
		}

	default:
		if msg := readErrorMessage(resp.Body); notComputed(msg) {
			return errors.New(errors.ErrCodeUpstreamAccess,
				"map not computed for %s on %s: %s", token, chain, msg)
		}
		return errors.New(errors.ErrCodeNetwork, "provider returned HTTP %d", resp.StatusCode)
	}
}

// readErrorMessage extracts the provider's error string, tolerating
// non-JSON bodies.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "no details"
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(body))
}

// notComputed matches the provider's "map not computed" message variants.
func notComputed(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not computed") || strings.Contains(m, "api key required")
}
