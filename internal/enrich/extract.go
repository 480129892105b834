package enrich

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	NoTitle   = "No title found"
	NoContent = "No content found"

	// MaxParagraphRunes caps a description taken from body text.
	MaxParagraphRunes = 300
)

// Metadata is what a page says about itself.
type Metadata struct {
	Title       string
	Description string
}

// Extract parses an HTML document and picks its title and a short
// description. Lookups are best-effort; missing fields get the NoTitle and
// NoContent placeholders.
func Extract(r io.Reader) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}
	return Metadata{
		Title:       title(doc),
		Description: description(doc),
	}, nil
}

func title(doc *goquery.Document) string {
	t := strings.TrimSpace(doc.Find("title").First().Text())
	if t == "" {
		return NoTitle
	}
	return t
}

// description uses the first description tag present: <meta name="description">,
// else the Open Graph description. A tag with empty content skips straight to
// the first paragraph.
func description(doc *goquery.Document) string {
	c, found := metaContent(doc, "name", "description")
	if !found {
		c, found = metaContent(doc, "property", "og:description")
	}
	if !found {
		// some sites put Open Graph tags under name=
		c, found = metaContent(doc, "name", "og:description")
	}
	if found && c != "" {
		return c
	}

	p := doc.Find("p").First()
	if p.Length() == 0 {
		return NoContent
	}
	text := truncateRunes(strings.TrimSpace(p.Text()), MaxParagraphRunes)
	if text == "" {
		return NoContent
	}
	return text
}

// metaContent returns the trimmed content of the first <meta> whose attr
// equals value, ignoring case, and whether such a tag exists.
func metaContent(doc *goquery.Document, attr, value string) (string, bool) {
	var (
		content string
		found   bool
	)
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok || !strings.EqualFold(strings.TrimSpace(v), value) {
			return true
		}
		content = strings.TrimSpace(s.AttrOr("content", ""))
		found = true
		return false
	})
	return content, found
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
