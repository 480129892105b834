package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsPolicy_Allowed(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`
User-agent: *
Disallow: /admin/
Allow: /admin/public/

User-agent: scout
Disallow: /private/
`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second})
	ctx := context.Background()

	tests := []struct {
		agent string
		path  string
		want  bool
	}{
		{"GoodBot", "/public-page", true},
		{"GoodBot", "/admin/secret", false},
		{"GoodBot", "/admin/public/index.html", true},
		{"", "/private/page", false},
		{"", "/admin/secret", true},
		{"", "", true},
	}

	policies := map[string]*RobotsPolicy{}
	for _, tt := range tests {
		p, ok := policies[tt.agent]
		if !ok {
			p = NewRobotsPolicy(fetcher, tt.agent, nil)
			policies[tt.agent] = p
		}
		got, err := p.Allowed(ctx, ts.URL+tt.path)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("agent %q path %q: expected allowed=%v, got %v", tt.agent, tt.path, tt.want, got)
		}
	}

	if n := atomic.LoadInt32(&hits); n != int32(len(policies)) {
		t.Errorf("expected robots.txt fetched once per policy, got %d fetches for %d policies", n, len(policies))
	}
}

func TestRobotsPolicy_StatusRules(t *testing.T) {
	status := http.StatusNotFound
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second})

	allowed, err := NewRobotsPolicy(fetcher, "", nil).Allowed(context.Background(), ts.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("expected 404 robots.txt to allow, got %v, %v", allowed, err)
	}

	status = http.StatusServiceUnavailable
	allowed, err = NewRobotsPolicy(fetcher, "", nil).Allowed(context.Background(), ts.URL+"/anything")
	if err != nil || allowed {
		t.Errorf("expected 503 robots.txt to disallow, got %v, %v", allowed, err)
	}
}

func TestRobotsPolicy_UnreachableHostAllows(t *testing.T) {
	fetcher, _ := NewFetcher(FetchConfig{Timeout: 200 * time.Millisecond})
	allowed, err := NewRobotsPolicy(fetcher, "", nil).Allowed(context.Background(), "http://127.0.0.1:1/page")
	if err != nil || !allowed {
		t.Errorf("expected unreachable robots.txt to allow, got %v, %v", allowed, err)
	}
}

func TestRobotsPolicy_InvalidURL(t *testing.T) {
	fetcher, _ := NewFetcher(FetchConfig{})
	if _, err := NewRobotsPolicy(fetcher, "", nil).Allowed(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}
