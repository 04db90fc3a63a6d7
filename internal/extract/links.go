// Package extract discovers links in HTML documents.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedSchemes are href prefixes that never name a crawlable page.
var skippedSchemes = []string{"#", "javascript:", "mailto:", "tel:"}

// Extractor finds anchor links with goquery and resolves them against the
// page URL. It implements crawler.LinkExtractor.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the distinct set of absolute http(s) links found in html.
// Fragments are stripped and trailing slashes trimmed so the same page is
// never discovered under two spellings; duplicates within the page are
// collapsed. Order follows document order.
func (e *Extractor) Extract(html []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || skipped(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		link := strings.TrimSuffix(abs.String(), "/")
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

func skipped(href string) bool {
	for _, prefix := range skippedSchemes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}
