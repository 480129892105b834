package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/proxy"
	"github.com/FranksOps/scout/pkg/useragent"
	"golang.org/x/net/html/charset"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

const (
	DefaultTimeout        = 5 * time.Second
	DefaultMaxBodyBytes   = 5 << 20
	DefaultAcceptLanguage = "th,en;q=0.8"
)

// FetchConfig configures page fetches.
type FetchConfig struct {
	Timeout        time.Duration
	MaxRedirects   int
	MaxBodyBytes   int64
	AcceptLanguage string
	UseCookieJar   bool
	ProxyPool      *proxy.Pool
	UAPool         *useragent.Pool
	Fingerprint    fingerprint.Profile
}

// Page is the outcome of fetching one URL. Err is set when no usable body
// could be obtained; HTTP error statuses are not errors.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       []byte // decoded to UTF-8
	Duration   time.Duration
	FetchedAt  time.Time
	Err        error
}

// Fetcher performs single URL fetches with a browser-like identity.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
// One client serves every fetch so connections and cookies are reused.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = DefaultAcceptLanguage
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}

	// The proxy is chosen per request and carried in its context.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// Timeout returns the per-page timeout in effect.
func (f *Fetcher) Timeout() time.Duration { return f.config.Timeout }

// Fetch GETs targetURL and returns what came back. It never returns nil.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) *Page {
	start := time.Now()
	page := &Page{
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}
	defer func() { page.Duration = time.Since(start) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		page.Err = fmt.Errorf("failed to create request: %w", err)
		return page
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		if activeProxy = f.config.ProxyPool.Next(); activeProxy != nil {
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
		}
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.config.AcceptLanguage)

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		page.Err = fmt.Errorf("request failed: %w", err)
		return page
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	page.StatusCode = resp.StatusCode
	page.Header = resp.Header
	page.FinalURL = resp.Request.URL.String()

	body, err := readBody(resp, f.config.MaxBodyBytes)
	page.Body = body
	if err != nil {
		page.Err = fmt.Errorf("failed to read body: %w", err)
	}
	return page
}

// readBody reads at most limit bytes and converts them to UTF-8 using the
// declared Content-Type charset, a <meta charset>, or content sniffing.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	raw := io.LimitReader(resp.Body, limit)

	r, err := charset.NewReader(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		// sniffing failed; keep whatever bytes remain undecoded
		return io.ReadAll(raw)
	}
	return io.ReadAll(r)
}
