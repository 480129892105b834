package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoKeywords is returned when no non-blank keyword is left to search for.
	ErrNoKeywords = errors.New("query: no keywords")
	// ErrUnknownSite is returned for a site restriction outside Sites.
	ErrUnknownSite = errors.New("query: unknown site restriction")
)

// Site restricts a search to one domain. SiteAll means no restriction.
type Site string

const (
	SiteAll       Site = "all"
	SiteFacebook  Site = "facebook.com"
	SiteInstagram Site = "instagram.com"
	SiteX         Site = "x.com"
)

// Sites lists the accepted restrictions in display order.
var Sites = []Site{SiteAll, SiteFacebook, SiteInstagram, SiteX}

// ParseSite accepts a domain from Sites, or "", "all" or "All sites" for no
// restriction. Matching is case-insensitive.
func ParseSite(s string) (Site, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "all", "all sites":
		return SiteAll, nil
	}
	for _, site := range Sites {
		if v == string(site) {
			return site, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSite, s)
}

// Prefix returns the search operator for the site, or "" for SiteAll.
func (s Site) Prefix() string {
	if s == SiteAll || s == "" {
		return ""
	}
	return "site:" + string(s)
}

// Query is a keyword search, optionally restricted to one site.
type Query struct {
	Keywords []string
	Site     Site
}

// Parse splits a comma-separated keyword line. Keywords are trimmed and
// blank ones dropped.
func Parse(line string, site Site) Query {
	var kws []string
	for _, k := range strings.Split(line, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	return Query{Keywords: kws, Site: site}
}

// Validate fails with ErrNoKeywords when the query has nothing to search for.
func (q Query) Validate() error {
	for _, k := range q.Keywords {
		if strings.TrimSpace(k) != "" {
			return nil
		}
	}
	return ErrNoKeywords
}

// String renders the query sent to the search engine, e.g.
// "site:facebook.com shop exercise".
func (q Query) String() string {
	kws := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	return strings.TrimSpace(q.Site.Prefix() + " " + strings.Join(kws, " "))
}
