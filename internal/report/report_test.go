package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/scout/internal/results"
)

func sampleSet() *results.Set {
	now := time.Now()
	set := results.NewSet("site:facebook.com shop", 30)
	set.StartedAt = now
	set.FinishedAt = now.Add(3 * time.Second)
	set.ReportedTotal = "12300"
	set.Keywords = []string{"shop", "moment"}
	set.Entries = []results.Entry{
		{No: 1, Title: "Shop", URL: "https://a.example", Content: "desc", StatusCode: 200, Bytes: 3},
		{No: 2, Title: "Just a moment...", URL: "https://b.example", Content: "No content found", StatusCode: 403, Bytes: 4, DetectedBot: true, DetectionSrc: "Cloudflare"},
		{No: 3, Title: "Error fetching title: timeout", URL: "https://c.example", Content: "Error fetching content: timeout", Err: "timeout"},
	}
	return set
}

func TestGenerateSummary(t *testing.T) {
	summary := GenerateSummary(sampleSet())

	if summary.Retrieved != 3 {
		t.Errorf("expected 3 retrieved, got %d", summary.Retrieved)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", summary.Failed)
	}
	if summary.TotalDetections != 1 {
		t.Errorf("expected 1 detection, got %d", summary.TotalDetections)
	}
	if summary.DetectionsBySrc["Cloudflare"] != 1 {
		t.Errorf("expected 1 CF detection, got %d", summary.DetectionsBySrc["Cloudflare"])
	}
	if summary.StatusCodes[200] != 1 || summary.StatusCodes[403] != 1 {
		t.Errorf("unexpected status codes %v", summary.StatusCodes)
	}
	if _, ok := summary.StatusCodes[0]; ok {
		t.Error("expected failed fetches to have no status code entry")
	}
	if summary.TotalBytes != 7 {
		t.Errorf("expected 7 total bytes, got %d", summary.TotalBytes)
	}
	if summary.Duration != 3*time.Second {
		t.Errorf("expected 3s duration, got %v", summary.Duration)
	}
	if len(summary.KeywordHits) != 2 || summary.KeywordHits[0].Count != 1 || summary.KeywordHits[1].Entries != 1 {
		t.Errorf("unexpected keyword hits: %+v", summary.KeywordHits)
	}
	if summary.ReportedTotal != "12300" || summary.Query != "site:facebook.com shop" || summary.RunID == "" {
		t.Errorf("unexpected run metadata: %+v", summary)
	}
}

func TestGenerateSummary_Nil(t *testing.T) {
	summary := GenerateSummary(nil)
	if summary.Retrieved != 0 || summary.ReportedTotal != "0" || summary.StatusCodes == nil {
		t.Errorf("unexpected empty summary: %+v", summary)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, GenerateSummary(sampleSet())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Scout Search Summary",
		"Found 3 results (search engine reports 12300)",
		"Cloudflare: 1",
		"403: 1",
		"shop: 1 in 1 results",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in text output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Search Error") {
		t.Error("expected no search error line for a successful run")
	}
}

func TestWriteText_SearchError(t *testing.T) {
	set := results.NewSet("shop", 10)
	set.SearchError = "API returned status 403: API key not valid"

	var buf bytes.Buffer
	if err := WriteText(&buf, GenerateSummary(set)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Search Error:  API returned status 403") {
		t.Errorf("expected search error in output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Found 0 results (search engine reports 0)") {
		t.Errorf("expected zero counts in output:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, GenerateSummary(sampleSet())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Retrieved != 3 || decoded.DetectionsBySrc["Cloudflare"] != 1 || decoded.StatusCodes[403] != 1 {
		t.Errorf("unexpected decoded summary: %+v", decoded)
	}
}

func TestWriteHTML(t *testing.T) {
	set := sampleSet()
	set.Entries[0].Title = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := WriteHTML(&buf, GenerateSummary(set), set.Entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>Scout Search Report</title>") {
		t.Error("expected HTML title")
	}
	if strings.Contains(out, `<script>alert`) {
		t.Error("expected page titles to be escaped")
	}
	if !strings.Contains(out, `href="https://b.example"`) {
		t.Error("expected result links")
	}
	if !strings.Contains(out, `class="failed"`) {
		t.Error("expected failed row marker")
	}
}
