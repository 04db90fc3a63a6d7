// Package convert turns fetched HTML into markdown text.
package convert

import (
	"fmt"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// MarkdownConverter converts HTML to markdown. It implements
// crawler.Converter.
type MarkdownConverter struct{}

// New returns a MarkdownConverter.
func New() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert renders html as markdown. The page URL provides the domain used to
// absolutize relative links in the converted text.
func (MarkdownConverter) Convert(html []byte, baseURL string) ([]byte, error) {
	var opts []converter.ConvertOptionFunc
	if domain := domainOf(baseURL); domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}

	md, err := htmltomarkdown.ConvertString(string(html), opts...)
	if err != nil {
		return nil, fmt.Errorf("convert html to markdown: %w", err)
	}
	return []byte(md), nil
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
