package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	// Used for portals that reject requests without a browser User-Agent
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403 (Forbidden) errors
	// Used for Cloudflare-protected sites that block browser-like User-Agents
	CloudflareClient ClientType = "cloudflare"

	// DefaultClient sends Go's default headers
	DefaultClient ClientType = "default"
)

// DefaultTimeout bounds a whole page fetch
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a listing page is read
const maxBodyBytes = 10 << 20

// ParseClientType maps a configuration value to a ClientType.
// An empty value selects BrowserClient.
func ParseClientType(s string) (ClientType, error) {
	switch ClientType(s) {
	case "":
		return BrowserClient, nil
	case BrowserClient, CloudflareClient, DefaultClient:
		return ClientType(s), nil
	default:
		return "", fmt.Errorf("unknown client type %q", s)
	}
}

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
}

// NewClient creates a new HTTP client with the specified type and overall timeout
func NewClient(clientType ClientType, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Fetch downloads the page at url and returns its body.
// Any final status outside 2xx is an error.
func (c *HTTPClient) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		// Browser-like headers to avoid 406 (Not Acceptable) errors
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Cloudflare allows simple tools like curl but blocks browser-like User-Agents
		req.Header.Set("User-Agent", "curl/8.7.1")

	default:
		// Default: use Go's default User-Agent
	}
}

// Pool hands out one HTTPClient per client type, all sharing a timeout
type Pool struct {
	timeout time.Duration
	clients map[ClientType]*HTTPClient
}

// NewPool creates an empty pool
func NewPool(timeout time.Duration) *Pool {
	return &Pool{
		timeout: timeout,
		clients: make(map[ClientType]*HTTPClient),
	}
}

// Fetch downloads url with the client registered for profile
func (p *Pool) Fetch(ctx context.Context, profile, url string) (string, error) {
	clientType, err := ParseClientType(profile)
	if err != nil {
		return "", err
	}

	client, ok := p.clients[clientType]
	if !ok {
		client = NewClient(clientType, p.timeout)
		p.clients[clientType] = client
	}

	return client.Fetch(ctx, url)
}
