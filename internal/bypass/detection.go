package bypass

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/FranksOps/scout/internal/scraper"
)

// Signature describes how one bot-protection vendor answers a request it
// challenged or blocked.
type Signature struct {
	Source string
	// Statuses the vendor answers challenges with; the other checks only run
	// for these.
	Statuses []int
	// ServerHint matches case-insensitively inside the Server header.
	ServerHint string
	// Headers whose mere presence identifies the vendor.
	Headers []string
	// BodyMarkers are byte strings found in the challenge page; any one matches.
	BodyMarkers []string
	// BodyAll matches only when every string is present.
	BodyAll []string
}

// DefaultSignatures covers the vendors most often met on social and shop pages.
var DefaultSignatures = []Signature{
	{
		Source:     "Cloudflare",
		Statuses:   []int{http.StatusForbidden, http.StatusServiceUnavailable},
		ServerHint: "cloudflare",
		Headers:    []string{"Cf-Mitigated"},
		BodyMarkers: []string{
			"cf-browser-verification",
			"cloudflare-nginx",
			"cf-turnstile",
			"Attention Required! | Cloudflare",
		},
	},
	{
		Source:     "Akamai",
		Statuses:   []int{http.StatusForbidden},
		ServerHint: "akamai",
		BodyAll:    []string{"Reference #", "Access Denied"},
	},
	{
		Source:      "DataDome",
		Statuses:    []int{http.StatusForbidden},
		ServerHint:  "datadome",
		Headers:     []string{"X-DataDome", "X-DataDome-Response"},
		BodyMarkers: []string{"geo.captcha-delivery.com", "datadome"},
	},
	{
		Source:      "PerimeterX",
		Statuses:    []int{http.StatusForbidden},
		Headers:     []string{"X-Px-Captcha"},
		BodyMarkers: []string{"client.perimeterx.net", "px-captcha", "_pxBlock"},
	},
}

// Match reports whether page carries this signature.
func (s Signature) Match(page *scraper.Page) bool {
	if page == nil || !containsStatus(s.Statuses, page.StatusCode) {
		return false
	}
	if s.ServerHint != "" && strings.Contains(strings.ToLower(page.Header.Get("Server")), s.ServerHint) {
		return true
	}
	for _, h := range s.Headers {
		if page.Header.Get(h) != "" {
			return true
		}
	}
	for _, m := range s.BodyMarkers {
		if bytes.Contains(page.Body, []byte(m)) {
			return true
		}
	}
	if len(s.BodyAll) == 0 {
		return false
	}
	for _, m := range s.BodyAll {
		if !bytes.Contains(page.Body, []byte(m)) {
			return false
		}
	}
	return true
}

// Analyze returns the source of the first signature page matches, or "" when
// the page looks like a normal response.
func Analyze(page *scraper.Page, sigs []Signature) string {
	if page == nil || page.Err != nil {
		return ""
	}
	for _, s := range sigs {
		if s.Match(page) {
			return s.Source
		}
	}
	return ""
}

func containsStatus(statuses []int, code int) bool {
	for _, s := range statuses {
		if s == code {
			return true
		}
	}
	return false
}
