package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"two keywords", "shop, exercise", []string{"shop", "exercise"}},
		{"thai keywords", "ร้านค้า, ค้าขาย, การออกกำลังกาย", []string{"ร้านค้า", "ค้าขาย", "การออกกำลังกาย"}},
		{"blanks dropped", " , shop,,  ,gym ", []string{"shop", "gym"}},
		{"single", "coffee", []string{"coffee"}},
		{"empty", "", nil},
		{"only blanks", " , , ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line, SiteAll)
			if !reflect.DeepEqual(got.Keywords, tt.want) {
				t.Errorf("Parse(%q) keywords = %q, want %q", tt.line, got.Keywords, tt.want)
			}
		})
	}
}

func TestQuery_String(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"site restricted", Parse("shop, exercise", SiteFacebook), "site:facebook.com shop exercise"},
		{"all sites", Parse("shop, exercise", SiteAll), "shop exercise"},
		{"zero site", Query{Keywords: []string{"shop"}}, "shop"},
		{"instagram", Parse("cafe", SiteInstagram), "site:instagram.com cafe"},
		{"x", Parse("news , today", SiteX), "site:x.com news today"},
		{"untrimmed keywords", Query{Keywords: []string{" a ", "", "b"}, Site: SiteAll}, "a b"},
		{"site only", Query{Site: SiteX}, "site:x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_Validate(t *testing.T) {
	if err := Parse("shop", SiteAll).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Parse(" , ", SiteFacebook).Validate(); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("expected ErrNoKeywords, got %v", err)
	}
	if err := (Query{Keywords: []string{"  "}}).Validate(); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("expected ErrNoKeywords for blank keyword, got %v", err)
	}
}

func TestParseSite(t *testing.T) {
	tests := []struct {
		in      string
		want    Site
		wantErr bool
	}{
		{"", SiteAll, false},
		{"all", SiteAll, false},
		{"All sites", SiteAll, false},
		{"facebook.com", SiteFacebook, false},
		{" Instagram.com ", SiteInstagram, false},
		{"X.COM", SiteX, false},
		{"tiktok.com", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSite(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSite) {
				t.Errorf("ParseSite(%q) expected ErrUnknownSite, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSite(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSite(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
