package crawler

import (
	"context"
	"time"
)

// Fetcher retrieves a URL over plain HTTP and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Renderer loads a page in a headless browser and captures it as a paginated
// document alongside the rendered DOM.
type Renderer interface {
	Render(ctx context.Context, url string) (RenderedPage, error)
}

// Converter turns raw HTML into markdown text.
type Converter interface {
	Convert(html []byte, baseURL string) ([]byte, error)
}

// LinkExtractor parses HTML and returns the distinct set of absolute
// http(s) links, resolved against baseURL.
type LinkExtractor interface {
	Extract(html []byte, baseURL string) ([]string, error)
}

// DocumentMerger concatenates rendered documents into a single document.
type DocumentMerger interface {
	Merge(docs [][]byte) ([]byte, error)
}

// PartWriter persists one completed output part and returns its URI.
type PartWriter interface {
	WritePart(ctx context.Context, name string, data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
