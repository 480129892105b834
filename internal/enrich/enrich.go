package enrich

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/FranksOps/scout/internal/bypass"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/results"
	"github.com/FranksOps/scout/internal/scraper"
)

// ErrDisallowed marks a URL skipped because robots.txt forbids fetching it.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// PageFetcher fetches one page. *scraper.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) *scraper.Page
}

// RobotsChecker decides whether a URL may be fetched.
// *scraper.RobotsPolicy implements it.
type RobotsChecker interface {
	Allowed(ctx context.Context, targetURL string) (bool, error)
}

// Outcome is the result of enriching one URL: Meta when Err is nil,
// otherwise the reason the page could not be used.
type Outcome struct {
	URL  string
	Page *scraper.Page
	Meta Metadata
	// DetectionSrc names the bot protection that answered instead of the site.
	DetectionSrc string
	Err          error
}

// OK reports whether the outcome carries page metadata.
func (o Outcome) OK() bool { return o.Err == nil }

// Entry converts the outcome into the numbered row shown to the user. Failed
// outcomes carry the error text in place of title and content.
func (o Outcome) Entry(no int) results.Entry {
	e := results.Entry{
		No:           no,
		URL:          o.URL,
		DetectionSrc: o.DetectionSrc,
		DetectedBot:  o.DetectionSrc != "",
	}
	if o.Page != nil {
		e.StatusCode = o.Page.StatusCode
		e.Duration = o.Page.Duration
		e.Bytes = len(o.Page.Body)
	}

	if o.Err != nil {
		e.Err = o.Err.Error()
		e.Title = "Error fetching title: " + e.Err
		e.Content = "Error fetching content: " + e.Err
		return e
	}
	e.Title = o.Meta.Title
	e.Content = o.Meta.Description
	return e
}

// Enricher turns search hits into titled, described entries, one page at a
// time.
type Enricher struct {
	fetcher    PageFetcher
	robots     RobotsChecker
	signatures []bypass.Signature
	logger     *slog.Logger
}

// New creates an Enricher using the default bot-protection signatures.
func New(fetcher PageFetcher, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		fetcher:    fetcher,
		signatures: bypass.DefaultSignatures,
		logger:     logger,
	}
}

// WithRobots makes the Enricher skip URLs that robots disallows. Skipped URLs
// still get an entry, carrying ErrDisallowed.
func (e *Enricher) WithRobots(robots RobotsChecker) *Enricher {
	e.robots = robots
	return e
}

// Visit fetches and parses a single URL.
func (e *Enricher) Visit(ctx context.Context, targetURL string) Outcome {
	if e.robots != nil {
		allowed, err := e.robots.Allowed(ctx, targetURL)
		if err != nil {
			return Outcome{URL: targetURL, Err: err}
		}
		if !allowed {
			return Outcome{URL: targetURL, Err: ErrDisallowed}
		}
	}

	page := e.fetcher.Fetch(ctx, targetURL)
	out := Outcome{URL: targetURL, Page: page}
	if page == nil {
		out.Err = errors.New("no response")
		return out
	}
	if page.Err != nil {
		out.Err = page.Err
		return out
	}

	out.DetectionSrc = bypass.Analyze(page, e.signatures)

	meta, err := Extract(bytes.NewReader(page.Body))
	if err != nil {
		out.Err = err
		return out
	}
	out.Meta = meta
	return out
}

// Enrich visits urls in order and returns exactly one entry per URL, numbered
// from 1. A failing URL yields an error entry and the loop moves on. onEntry,
// if set, sees each entry as soon as it is ready.
func (e *Enricher) Enrich(ctx context.Context, urls []string, onEntry func(results.Entry)) []results.Entry {
	entries := make([]results.Entry, 0, len(urls))

	for i, u := range urls {
		out := e.Visit(ctx, u)
		entry := out.Entry(i + 1)

		if out.OK() {
			e.logger.Debug("enriched", "no", entry.No, "url", u, "status", entry.StatusCode, "duration", entry.Duration)
		} else {
			e.logger.Warn("enrich failed", "no", entry.No, "url", u, "err", out.Err)
		}
		if entry.DetectedBot {
			e.logger.Warn("bot protection answered", "url", u, "source", entry.DetectionSrc)
		}

		metrics.RecordEnrich(hostname(u), entry)

		entries = append(entries, entry)
		if onEntry != nil {
			onEntry(entry)
		}
	}
	return entries
}

func hostname(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Hostname()
	}
	return ""
}
