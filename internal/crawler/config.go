package crawler

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the settings for one crawl run. It is decoupled from Viper so
// the engine and its collaborators can be constructed and tested without the
// configuration layer.
type Config struct {
	StartURL        string
	AllowedPrefixes []string
	OutputName      string
	OutputKind      OutputKind
	Strategy        Strategy
	MaxURLs         int
	MaxPartBytes    int64
	Concurrency     int
	UserAgent       string
	RequestTimeout  time.Duration
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("start url must be set")
	}
	if u, err := url.Parse(c.StartURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("start url %q must be absolute", c.StartURL)
	}
	if len(c.AllowedPrefixes) == 0 {
		return fmt.Errorf("at least one allowed prefix must be set")
	}
	if c.OutputName == "" {
		return fmt.Errorf("output name must be set")
	}
	switch c.OutputKind {
	case OutputMarkdown, OutputPDF:
	default:
		return fmt.Errorf("unknown output kind %q", c.OutputKind)
	}
	switch c.Strategy {
	case StrategyHTMLOnly, StrategyMarkdownOnly, StrategyPrioritizeMarkdown:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.OutputKind == OutputPDF && c.Strategy != StrategyHTMLOnly {
		return fmt.Errorf("pdf output requires the %s strategy", StrategyHTMLOnly)
	}
	if c.MaxURLs <= 0 {
		return fmt.Errorf("max urls must be > 0")
	}
	if c.MaxPartBytes <= 0 {
		return fmt.Errorf("max part bytes must be > 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	return nil
}
