package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/scout/internal/query"
	"github.com/FranksOps/scout/internal/results"
	"github.com/FranksOps/scout/internal/serp"
)

// Enricher turns result links into numbered entries. *enrich.Enricher
// implements it.
type Enricher interface {
	Enrich(ctx context.Context, urls []string, onEntry func(results.Entry)) []results.Entry
}

// Pipeline runs one keyword search end to end: build the query, page through
// the search engine, then enrich every hit in order.
type Pipeline struct {
	SERPProvider serp.SERPProvider
	Enricher     Enricher
	Logger       *slog.Logger
	// OnEntry, when set, receives each entry as soon as it is enriched.
	OnEntry func(results.Entry)
}

// Run executes the pipeline for q and returns a fresh result set. A failed
// search is fatal: the set comes back empty with SearchError filled in, along
// with the wrapped error.
func (p *Pipeline) Run(ctx context.Context, q query.Query, maxResults int) (*results.Set, error) {
	if p.SERPProvider == nil {
		return nil, errors.New("pipeline: SERPProvider is nil")
	}
	if p.Enricher == nil {
		return nil, errors.New("pipeline: Enricher is nil")
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	qs := q.String()
	set := results.NewSet(qs, maxResults)
	set.Keywords = q.Keywords
	logger = logger.With("run_id", set.ID)

	logger.Info("starting search", "query", qs, "max_results", maxResults)
	found, err := p.SERPProvider.Search(ctx, qs, maxResults)
	if err != nil {
		set.SearchError = err.Error()
		set.FinishedAt = time.Now().UTC()
		logger.Error("search failed", "error", err)
		return set, fmt.Errorf("search failed: %w", err)
	}
	set.ReportedTotal = found.ReportedTotal

	urls := found.URLs()
	logger.Info("enriching results", "count", len(urls), "reported_total", found.ReportedTotal)
	set.Entries = p.Enricher.Enrich(ctx, urls, p.OnEntry)
	set.FinishedAt = time.Now().UTC()

	logger.Info("run complete",
		"retrieved", set.Len(),
		"failed", set.Failed(),
		"duration", set.FinishedAt.Sub(set.StartedAt),
	)
	return set, nil
}
