package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// DefaultRobotsAgent is the product token matched against robots.txt groups.
const DefaultRobotsAgent = "scout"

// RobotsPolicy answers whether a result page may be fetched according to its
// host's robots.txt. Each host's file is fetched once per policy.
type RobotsPolicy struct {
	fetcher *Fetcher
	agent   string
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsPolicy creates a policy that fetches robots.txt through fetcher.
func NewRobotsPolicy(fetcher *Fetcher, agent string, logger *slog.Logger) *RobotsPolicy {
	if agent == "" {
		agent = DefaultRobotsAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsPolicy{
		fetcher: fetcher,
		agent:   agent,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether targetURL may be fetched. A robots.txt that cannot
// be fetched allows everything; 4xx allows everything and 5xx disallows
// everything.
func (r *RobotsPolicy) Allowed(ctx context.Context, targetURL string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return false, fmt.Errorf("invalid url: %q has no host", targetURL)
	}

	data := r.load(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, r.agent), nil
}

func (r *RobotsPolicy) load(ctx context.Context, origin string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[origin]; ok {
		return data
	}

	page := r.fetcher.Fetch(ctx, origin+"/robots.txt")
	if page.Err != nil {
		r.logger.Debug("robots.txt fetch failed, defaulting to allow", "origin", origin, "err", page.Err)
		r.cache[origin] = nil
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(page.StatusCode, page.Body)
	if err != nil {
		r.logger.Debug("robots.txt parse failed, defaulting to allow", "origin", origin, "err", err)
		data = nil
	}
	r.cache[origin] = data
	return data
}
