package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Engine is the pipeline coordinator. It owns the channel connecting the
// worker pool to the reassembler, seeds the frontier with the start URL, and
// drives the shutdown sequence: stop issuing work once the frontier is
// exhausted, wait for in-flight workers, flush the reassembler, and return
// aggregate statistics.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	renderer  Renderer
	converter Converter
	extractor LinkExtractor
	merger    DocumentMerger
	writer    PartWriter
	clock     Clock
	ids       IDGenerator
	logger    *zap.Logger
}

// NewEngine constructs an Engine. The renderer may be nil for markdown
// output; the converter, extractor and merger may be nil when the output
// kind makes them unreachable.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	renderer Renderer,
	converter Converter,
	extractor LinkExtractor,
	merger DocumentMerger,
	writer PartWriter,
	clock Clock,
	ids IDGenerator,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		renderer:  renderer,
		converter: converter,
		extractor: extractor,
		merger:    merger,
		writer:    writer,
		clock:     clock,
		ids:       ids,
		logger:    logger,
	}
}

// Run executes the crawl to completion and returns aggregate statistics.
// Per-URL failures never abort the run; a failed part flush does, with the
// parts already written remaining valid alongside partial statistics.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("validate config: %w", err)
	}
	if e.cfg.OutputKind == OutputPDF && e.renderer == nil {
		return Result{}, fmt.Errorf("pdf output requires a renderer")
	}

	runID := e.runID()
	logger := e.logger.With(zap.String("run_id", runID))
	start := e.clock.Now()

	frontier := NewFrontier(e.cfg.AllowedPrefixes, e.cfg.MaxURLs)
	if !frontier.Discover(e.cfg.StartURL, 0) {
		return Result{}, fmt.Errorf("start url %q rejected by the prefix filter", e.cfg.StartURL)
	}

	reasm := NewReassembler(e.newUnit(), e.writer, e.cfg.OutputName, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-runCtx.Done()
		frontier.Close()
	}()

	results := make(chan FetchResult, e.cfg.Concurrency*2)
	sinkDone := make(chan error, 1)
	go func() {
		sinkDone <- e.consume(runCtx, cancel, results, reasm)
	}()

	logger.Info("Crawl starting",
		zap.String("start_url", e.cfg.StartURL),
		zap.Strings("prefixes", e.cfg.AllowedPrefixes),
		zap.String("output", string(e.cfg.OutputKind)),
		zap.String("strategy", string(e.cfg.Strategy)),
		zap.Int("max_urls", e.cfg.MaxURLs),
		zap.Int("concurrency", e.cfg.Concurrency),
	)

	pool := NewPool(e.cfg, frontier, results, e.fetcher, e.renderer, e.converter, e.extractor, e.clock, logger)
	pool.Run(runCtx)
	close(results)

	err := <-sinkDone

	stats := Result{
		FilesWritten: reasm.PartsWritten(),
		URLsFetched:  reasm.Fetched(),
		URLsFailed:   reasm.Failed(),
	}
	logger.Info("Crawl finished",
		zap.Int("files_written", stats.FilesWritten),
		zap.Int("urls_fetched", stats.URLsFetched),
		zap.Int("urls_failed", stats.URLsFailed),
		zap.Int("urls_seen", frontier.SeenCount()),
		zap.Duration("took", e.clock.Now().Sub(start)),
	)

	if err != nil {
		return stats, fmt.Errorf("bind output: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stats, ctxErr
	}
	return stats, nil
}

// consume serializes all reassembler access on one goroutine. After a fatal
// sink error it cancels the run but keeps draining so workers never block on
// the results channel.
func (e *Engine) consume(ctx context.Context, cancel context.CancelFunc, results <-chan FetchResult, reasm *Reassembler) error {
	var sinkErr error
	for res := range results {
		if sinkErr != nil {
			continue
		}
		if err := reasm.Submit(ctx, res); err != nil {
			sinkErr = err
			cancel()
		}
	}
	if sinkErr != nil {
		return sinkErr
	}
	return reasm.Flush(ctx)
}

func (e *Engine) newUnit() OutputUnit {
	if e.cfg.OutputKind == OutputPDF {
		return NewPDFUnit(e.cfg.MaxPartBytes, e.merger)
	}
	return NewTextUnit(e.cfg.MaxPartBytes)
}

func (e *Engine) runID() string {
	if e.ids == nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	id, err := e.ids.NewID()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}
