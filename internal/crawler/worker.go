package crawler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sitebind/sitebind/internal/metrics"
)

// Pool is a fixed-size set of concurrent fetch workers. Each worker pulls a
// work item from the frontier, applies the configured content strategy
// (possibly with fallback), forwards a tagged result to the reassembler
// channel, and feeds newly discovered links back into the frontier.
type Pool struct {
	cfg       Config
	frontier  *Frontier
	results   chan<- FetchResult
	fetcher   Fetcher
	renderer  Renderer
	converter Converter
	extractor LinkExtractor
	clock     Clock
	logger    *zap.Logger
}

// NewPool constructs a worker pool.
func NewPool(
	cfg Config,
	frontier *Frontier,
	results chan<- FetchResult,
	fetcher Fetcher,
	renderer Renderer,
	converter Converter,
	extractor LinkExtractor,
	clock Clock,
	logger *zap.Logger,
) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		cfg:       cfg,
		frontier:  frontier,
		results:   results,
		fetcher:   fetcher,
		renderer:  renderer,
		converter: converter,
		extractor: extractor,
		clock:     clock,
		logger:    logger,
	}
}

// Run starts the configured number of workers and blocks until the frontier
// is exhausted and every worker has exited.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}
	wg.Wait()
}

func (p *Pool) work(ctx context.Context) {
	for {
		item, ok := p.frontier.Next()
		if !ok {
			return
		}

		metrics.IncActiveWorkers()
		res := p.process(ctx, item)
		metrics.DecActiveWorkers()

		p.results <- res

		// Feed discovered links back before releasing the item, so the
		// frontier never looks exhausted while links are still in flight.
		for _, link := range res.Links {
			p.frontier.Discover(link, item.Depth+1)
		}
		p.frontier.Done()
	}
}

// process applies the content strategy to one work item. It always returns a
// result carrying the item's sequence number, failure or not.
func (p *Pool) process(ctx context.Context, item WorkItem) FetchResult {
	start := p.clock.Now()
	res := p.retrieve(ctx, item)
	res.Seq = item.Seq
	res.URL = item.URL
	res.Duration = p.clock.Now().Sub(start)

	if res.Failed() {
		p.logger.Warn("Fetch failed",
			zap.String("url", item.URL),
			zap.Uint64("seq", item.Seq),
			zap.Int("depth", item.Depth),
			zap.Error(res.Err),
		)
	} else {
		p.logger.Debug("Fetched",
			zap.String("url", item.URL),
			zap.Uint64("seq", item.Seq),
			zap.Int("links", len(res.Links)),
			zap.Duration("took", res.Duration),
		)
	}
	return res
}

func (p *Pool) retrieve(ctx context.Context, item WorkItem) FetchResult {
	if p.cfg.OutputKind == OutputPDF {
		return p.retrieveRendered(ctx, item)
	}
	return p.retrieveText(ctx, item)
}

// retrieveText produces markdown content for the text output kind.
func (p *Pool) retrieveText(ctx context.Context, item WorkItem) FetchResult {
	switch p.cfg.Strategy {
	case StrategyMarkdownOnly:
		return p.fetchMarkdown(ctx, item.URL)
	case StrategyPrioritizeMarkdown:
		res := p.fetchMarkdown(ctx, item.URL)
		if !res.Failed() {
			return res
		}
		p.logger.Debug("Markdown miss, falling back to HTML",
			zap.String("url", item.URL),
			zap.Error(res.Err),
		)
		return p.fetchHTML(ctx, item.URL)
	default:
		return p.fetchHTML(ctx, item.URL)
	}
}

// fetchMarkdown fetches the URL's markdown resource directly. No HTML is
// parsed under this path, so no links are discovered.
func (p *Pool) fetchMarkdown(ctx context.Context, rawURL string) FetchResult {
	resp, err := p.fetcher.Fetch(ctx, MarkdownURL(rawURL))
	if err != nil {
		return FetchResult{Kind: ContentMarkdown, Err: err}
	}
	return FetchResult{Kind: ContentMarkdown, Content: resp.Body}
}

// fetchHTML fetches the page as HTML, converts it to markdown, and extracts
// links for the discovery feedback edge.
func (p *Pool) fetchHTML(ctx context.Context, rawURL string) FetchResult {
	resp, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return FetchResult{Kind: ContentMarkdown, Err: err}
	}

	text, err := p.converter.Convert(resp.Body, rawURL)
	if err != nil {
		return FetchResult{Kind: ContentMarkdown, Err: fmt.Errorf("%w: %v", ErrConversion, err)}
	}

	return FetchResult{
		Kind:    ContentMarkdown,
		Content: text,
		Links:   p.extractLinks(resp.Body, rawURL),
	}
}

// retrieveRendered produces one rendered document for the paginated output
// kind. Every strategy renders here, since the output format requires a
// rendered page rather than text; links come from the rendered DOM.
func (p *Pool) retrieveRendered(ctx context.Context, item WorkItem) FetchResult {
	page, err := p.renderer.Render(ctx, item.URL)
	if err != nil {
		return FetchResult{Kind: ContentPDF, Err: err}
	}

	res := FetchResult{Kind: ContentPDF, Content: page.PDF}
	if p.cfg.Strategy != StrategyMarkdownOnly && len(page.HTML) > 0 {
		res.Links = p.extractLinks(page.HTML, item.URL)
	}
	return res
}

// extractLinks never fails a page: a broken document still contributes its
// content, just no discoveries.
func (p *Pool) extractLinks(html []byte, baseURL string) []string {
	links, err := p.extractor.Extract(html, baseURL)
	if err != nil {
		p.logger.Warn("Link extraction failed", zap.String("url", baseURL), zap.Error(err))
		return nil
	}
	return links
}
