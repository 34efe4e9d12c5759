// Package extractor turns raw HTML bytes into a structured content record.
// Extraction is pure and total: the same bytes always produce the same
// record, and any input, non-HTML garbage included, yields a well-formed
// record with empty defaults rather than an error.
package extractor

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content is the structured record extracted from one page.
type Content struct {
	Title           string `json:"title"`
	MainContent     string `json:"main_content"`
	MetaDescription string `json:"meta_description"`
	Links           []Link `json:"links"`
}

// Link is one outbound anchor, href as-authored (no base resolution).
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// excludedSelector subtrees never contribute to extracted text or links.
const excludedSelector = "nav, header, footer, script, style, noscript"

// contentTags are probed in priority order for the main-content container.
var contentTags = []string{"article", "main", "div", "section"}

// contentClassHints match a container's class attribute case-insensitively.
var contentClassHints = []string{"content", "article", "post", "main"}

// Extract parses body and returns the content record. It never fails; see
// the package doc for the totality contract.
func Extract(body []byte) *Content {
	content := &Content{Links: []Link{}}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return content
	}

	content.Title = cleanText(doc.Find("title").First().Text())
	content.MetaDescription = cleanText(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))

	// Strip boilerplate subtrees before walking for main content and links.
	doc.Find(excludedSelector).Remove()

	content.MainContent = extractMainContent(doc)
	content.Links = extractLinks(doc)

	return content
}

// extractMainContent probes article > main > div > section for the first
// element whose class hints at page content, falling back to the whole body
// text when nothing matches.
func extractMainContent(doc *goquery.Document) string {
	for _, tag := range contentTags {
		var found *goquery.Selection
		doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if classMatches(s.AttrOr("class", "")) {
				found = s
				return false
			}
			return true
		})
		if found != nil {
			return cleanText(found.Text())
		}
	}
	return cleanText(doc.Find("body").Text())
}

func extractLinks(doc *goquery.Document) []Link {
	links := []Link{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s.Text())
		href, _ := s.Attr("href")
		if text == "" || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		links = append(links, Link{Text: text, Href: href})
	})
	return links
}

func classMatches(class string) bool {
	class = strings.ToLower(class)
	for _, hint := range contentClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace runs to single spaces and trims the ends.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
