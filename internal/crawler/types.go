package crawler

import (
	"net/http"
	"time"
)

// OutputKind selects the physical shape of the bound output.
type OutputKind string

// Supported output kinds.
const (
	OutputMarkdown OutputKind = "md"
	OutputPDF      OutputKind = "pdf"
)

// Strategy selects how a page's content is retrieved.
type Strategy string

// Supported content strategies.
const (
	StrategyHTMLOnly           Strategy = "only-html"
	StrategyMarkdownOnly       Strategy = "only-md"
	StrategyPrioritizeMarkdown Strategy = "prioritize-md"
)

// ContentKind tags the payload carried by a FetchResult.
type ContentKind string

// Supported content kinds.
const (
	ContentMarkdown ContentKind = "markdown"
	ContentPDF      ContentKind = "pdf"
)

// WorkItem is a single URL handed to a fetch worker. It is immutable once
// issued by the frontier.
type WorkItem struct {
	// URL is the absolute URL to fetch.
	URL string
	// Seq is the dense discovery sequence number assigned at enqueue time.
	Seq uint64
	// Depth is the hop count from the start URL.
	Depth int
}

// FetchResult is the outcome of processing one WorkItem. Exactly one result
// is produced per issued item, failure or not, so the reassembler can keep
// sequence continuity.
type FetchResult struct {
	Seq      uint64
	URL      string
	Kind     ContentKind
	Content  []byte
	Links    []string
	Err      error
	Duration time.Duration
}

// Failed reports whether the fetch produced no usable content.
func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// FetchResponse is the raw result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// RenderedPage is the result of a headless render: the paginated document
// plus the DOM snapshot used for link discovery.
type RenderedPage struct {
	URL        string
	StatusCode int
	PDF        []byte
	HTML       []byte
	Duration   time.Duration
}

// Result aggregates run statistics returned to the caller.
type Result struct {
	FilesWritten int
	URLsFetched  int
	URLsFailed   int
}
