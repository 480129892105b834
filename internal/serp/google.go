package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/pkg/httpclient"
)

const (
	DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"
	DefaultLanguage = "th"
	DefaultPageSize = 10
	DefaultTimeout  = 30 * time.Second

	// maxPageSize is the most items the Custom Search API returns per call.
	maxPageSize = 10
)

// GoogleConfig configures the Custom Search JSON API client.
type GoogleConfig struct {
	APIKey   string
	EngineID string
	Endpoint string
	// Language is sent as the hl interface language parameter.
	Language string
	PageSize int
	Timeout  time.Duration
	// Client overrides the HTTP client built from Timeout.
	Client *httpclient.Client
}

// GoogleCSE pages through the Google Custom Search JSON API.
type GoogleCSE struct {
	config GoogleConfig
	client *httpclient.Client
	logger *slog.Logger
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
}

type cseError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGoogleCSE creates a client. A nil logger falls back to slog.Default().
func NewGoogleCSE(cfg GoogleConfig, logger *slog.Logger) (*GoogleCSE, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("google cse: api key and engine id are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("google cse: %w", err)
		}
	}

	return &GoogleCSE{config: cfg, client: client, logger: logger}, nil
}

// Search requests limit/PageSize pages of results, or a single page of limit
// results when limit is below the page size. The reported total comes from
// the first page. A page shorter than requested ends the search. Any failed
// page abandons the whole search.
func (g *GoogleCSE) Search(ctx context.Context, query string, limit int) (*Results, error) {
	res := &Results{Hits: []Hit{}, ReportedTotal: "0"}
	if limit <= 0 {
		return res, nil
	}

	num := g.config.PageSize
	pages := limit / num
	if pages == 0 {
		pages, num = 1, limit
	}

	for p := 0; p < pages; p++ {
		start := p*num + 1

		page, err := g.fetchPage(ctx, query, start, num)
		if err != nil {
			return nil, fmt.Errorf("google cse: page %d: %w", p+1, err)
		}
		res.Pages++

		if p == 0 && page.SearchInformation.TotalResults != "" {
			res.ReportedTotal = page.SearchInformation.TotalResults
		}
		for _, item := range page.Items {
			res.Hits = append(res.Hits, Hit{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
		}

		g.logger.Debug("search page fetched", "query", query, "page", p+1, "start", start, "items", len(page.Items))

		if len(page.Items) < num {
			break
		}
	}

	g.logger.Info("search complete", "query", query, "hits", len(res.Hits), "pages", res.Pages, "reported_total", res.ReportedTotal)
	return res, nil
}

func (g *GoogleCSE) fetchPage(ctx context.Context, query string, start, num int) (page *cseResponse, err error) {
	began := time.Now()
	defer func() { metrics.RecordSearchPage(time.Since(began), err) }()

	params := url.Values{}
	params.Set("key", g.config.APIKey)
	params.Set("cx", g.config.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("start", strconv.Itoa(start))
	params.Set("hl", g.config.Language)

	resp, err := g.client.Get(ctx, g.config.Endpoint+"?"+params.Encode(), http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr cseError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	page = &cseResponse{}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return page, nil
}
