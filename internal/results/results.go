package results

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one enriched search hit: the row a user sees and exports.
type Entry struct {
	No      int    `json:"no"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`

	StatusCode   int           `json:"status_code,omitempty"`
	DetectedBot  bool          `json:"detected_bot,omitempty"`
	DetectionSrc string        `json:"detection_src,omitempty"` // e.g. "Cloudflare"
	Duration     time.Duration `json:"duration,omitempty"`
	Bytes        int           `json:"bytes,omitempty"`
	Err          string        `json:"error,omitempty"` // non-empty if the page could not be fetched or parsed
}

// Failed reports whether the entry holds error text instead of page data.
func (e Entry) Failed() bool { return e.Err != "" }

// Set is the result table of a single run together with what the search
// engine said about it. A Set belongs to the caller that ran the pipeline;
// every run produces a new one.
type Set struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	Keywords      []string  `json:"keywords,omitempty"`
	MaxResults    int       `json:"max_results"`
	ReportedTotal string    `json:"reported_total"`
	SearchError   string    `json:"search_error,omitempty"`
	Entries       []Entry   `json:"entries"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// NewSet starts an empty result set for query.
func NewSet(query string, maxResults int) *Set {
	return &Set{
		ID:         uuid.New().String(),
		Query:      query,
		MaxResults: maxResults,
		Entries:    []Entry{},
		StartedAt:  time.Now().UTC(),
	}
}

// Len returns the number of entries retrieved.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Failed counts entries whose page could not be enriched.
func (s *Set) Failed() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}
