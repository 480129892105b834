package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrUnknownProxy is returned when marking a proxy the pool never handed out.
var ErrUnknownProxy = errors.New("proxy: not in pool")

// Proxy represents a single proxy endpoint with health tracking.
type Proxy struct {
	URL           *url.URL
	Failures      int
	Successes     int
	LastUsed      time.Time
	DisabledUntil time.Time
}

func (p *Proxy) disabled(now time.Time) bool {
	return !p.DisabledUntil.IsZero() && now.Before(p.DisabledUntil)
}

// Config defines settings for the Proxy Pool.
type Config struct {
	// MaxFailures before disabling a proxy temporarily.
	MaxFailures int
	// Cooldown is how long a proxy remains disabled after hitting MaxFailures.
	Cooldown time.Duration
}

// Pool rotates through proxies, skipping the ones cooling down.
// It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	proxies []*Proxy
	byURL   map[string]*Proxy
	next    int
	cfg     Config
	now     func() time.Time
}

// NewPool creates an empty proxy pool. Zero config values get defaults.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		byURL: make(map[string]*Proxy),
		cfg:   cfg,
		now:   time.Now,
	}
}

// LoadFile reads proxies from a file, one URL per line.
// Blank lines and lines starting with '#' are ignored.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: open %s: %w", path, err)
	}
	defer f.Close()

	var raws []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raws = append(raws, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("proxy: read %s: %w", path, err)
	}
	return p.Add(raws...)
}

// Add parses and appends proxy URLs. A missing scheme defaults to http.
// Duplicates are ignored.
func (p *Pool) Add(rawURLs ...string) error {
	parsed := make([]*url.URL, 0, len(rawURLs))
	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: parse %q: %w", raw, err)
		}
		if u.Host == "" {
			return fmt.Errorf("proxy: %q has no host", raw)
		}
		parsed = append(parsed, u)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range parsed {
		key := u.String()
		if _, dup := p.byURL[key]; dup {
			continue
		}
		prx := &Proxy{URL: u}
		p.proxies = append(p.proxies, prx)
		p.byURL[key] = prx
	}
	return nil
}

// Len reports the number of proxies in the pool, healthy or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Next returns the next healthy proxy, or nil when the pool is empty or every
// proxy is cooling down.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.proxies {
		prx := p.proxies[p.next]
		p.next = (p.next + 1) % len(p.proxies)

		if prx.disabled(now) {
			continue
		}
		if !prx.DisabledUntil.IsZero() {
			// cooldown over
			prx.DisabledUntil = time.Time{}
			prx.Failures = 0
		}
		prx.LastUsed = now
		return prx.URL
	}
	return nil
}

// MarkSuccess records a successful request through proxyURL.
func (p *Pool) MarkSuccess(proxyURL *url.URL) error {
	return p.mark(proxyURL, func(prx *Proxy) {
		prx.Successes++
		if prx.Failures > 0 {
			prx.Failures--
		}
	})
}

// MarkFailure records a failed request through proxyURL. Reaching MaxFailures
// disables the proxy for the configured cooldown.
func (p *Pool) MarkFailure(proxyURL *url.URL) error {
	return p.mark(proxyURL, func(prx *Proxy) {
		prx.Failures++
		if prx.Failures >= p.cfg.MaxFailures {
			prx.DisabledUntil = p.now().Add(p.cfg.Cooldown)
		}
	})
}

func (p *Pool) mark(proxyURL *url.URL, fn func(*Proxy)) error {
	if proxyURL == nil {
		return errors.New("proxy: nil url")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	prx, ok := p.byURL[proxyURL.String()]
	if !ok {
		return ErrUnknownProxy
	}
	fn(prx)
	return nil
}
