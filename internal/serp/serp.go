package serp

import "context"

// Hit is one organic search result.
type Hit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Results is what a provider found for one query.
type Results struct {
	Hits []Hit `json:"hits"`
	// ReportedTotal is the engine's own estimate, kept verbatim as text.
	ReportedTotal string `json:"reported_total"`
	// Pages is the number of result pages requested.
	Pages int `json:"pages"`
}

// URLs returns the hit links in result order.
func (r *Results) URLs() []string {
	if r == nil {
		return nil
	}
	urls := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		urls = append(urls, h.URL)
	}
	return urls
}

// SERPProvider abstracts a search engine that returns result links for a
// query. The limit parameter caps the number of hits requested.
type SERPProvider interface {
	Search(ctx context.Context, query string, limit int) (*Results, error)
}
