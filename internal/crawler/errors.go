package crawler

import "errors"

// Sentinel errors surfaced by the pipeline and its collaborators.
var (
	// ErrNotFound indicates the markdown resource for a URL does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrLimitReached indicates the frontier declined a discovery because the
	// max-URL budget is spent. It is a normal stop condition, not a failure.
	ErrLimitReached = errors.New("url limit reached")
	// ErrConversion indicates the HTML-to-text step failed for a page.
	ErrConversion = errors.New("content conversion failed")
)

// FailureLabel classifies a per-URL failure for logging and metrics.
func FailureLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConversion):
		return "conversion"
	default:
		return "network"
	}
}
