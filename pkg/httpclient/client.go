package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// DefaultTimeout bounds every request made through a Client unless Config.Timeout overrides it.
const DefaultTimeout = 30 * time.Second

// Config defines the setup for the HTTP Client.
type Config struct {
	Timeout time.Duration
	// MaxRedirects caps followed redirects. Zero keeps net/http's default of 10,
	// a negative value disables redirect following.
	MaxRedirects int
	UseCookieJar bool
	// Header is applied to every outgoing request that does not already set the key.
	Header http.Header
	// Provide a custom Transport, e.g. for proxies or uTLS fingerprinting
	Transport http.RoundTripper
}

// Client wraps a standard http.Client to provide configurable timeouts,
// redirect policies, default headers and cookie management.
type Client struct {
	*http.Client
	header http.Header
}

// New creates a new HTTP client based on the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
	}

	switch {
	case cfg.MaxRedirects < 0:
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case cfg.MaxRedirects > 0:
		limit := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	}

	if cfg.UseCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.Jar = jar
	}

	return &Client{Client: c, header: cfg.Header.Clone()}, nil
}

// Do executes an HTTP request under ctx. The context controls cancellation
// independently of the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}

	out := req.Clone(ctx)
	for k, vals := range c.header {
		if out.Header.Get(k) == "" {
			out.Header[k] = append([]string(nil), vals...)
		}
	}

	resp, err := c.Client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}

// Get builds a GET request for rawURL with the extra header and executes it.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for k, vals := range header {
		req.Header[k] = append([]string(nil), vals...)
	}
	return c.Do(ctx, req)
}
