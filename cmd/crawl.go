package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	gstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitebind/sitebind/internal/api"
	systemclock "github.com/sitebind/sitebind/internal/clock/system"
	"github.com/sitebind/sitebind/internal/config"
	"github.com/sitebind/sitebind/internal/convert"
	"github.com/sitebind/sitebind/internal/crawler"
	"github.com/sitebind/sitebind/internal/extract"
	collyfetcher "github.com/sitebind/sitebind/internal/fetcher/colly"
	"github.com/sitebind/sitebind/internal/fetcher/headless"
	uuidgen "github.com/sitebind/sitebind/internal/id/uuid"
	"github.com/sitebind/sitebind/internal/logging"
	"github.com/sitebind/sitebind/internal/metrics"
	"github.com/sitebind/sitebind/internal/pdf"
	"github.com/sitebind/sitebind/internal/session"
	"github.com/sitebind/sitebind/internal/storage"
	"github.com/sitebind/sitebind/internal/storage/gcs"
	"github.com/sitebind/sitebind/internal/storage/local"
)

// newCrawlCmd creates the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run a crawl to completion and write the output parts",
		RunE:  runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := api.New(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	crawlCfg, err := cfg.CrawlConfig()
	if err != nil {
		return err
	}

	state, err := session.Load(cfg.Session.StateFile)
	if err != nil {
		return fmt.Errorf("load session state: %w", err)
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: crawlCfg.UserAgent,
		Timeout:   crawlCfg.RequestTimeout,
		Cookies:   state.HTTPCookies(),
	})

	var renderer crawler.Renderer
	if crawlCfg.OutputKind == crawler.OutputPDF {
		hr, err := headless.New(headless.Config{
			MaxParallel: cfg.Render.MaxParallel,
			UserAgent:   crawlCfg.UserAgent,
			NavTimeout:  time.Duration(cfg.Render.NavTimeoutSec) * time.Second,
			DomainQPS:   cfg.Render.DomainQPS,
			Session:     state,
		}, logger)
		if err != nil {
			return fmt.Errorf("init renderer: %w", err)
		}
		defer hr.Close()
		renderer = hr
	}

	writer, err := buildWriter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	engine := crawler.NewEngine(
		crawlCfg,
		fetcher,
		renderer,
		convert.New(),
		extract.New(),
		pdf.New(),
		writer,
		systemclock.New(),
		uuidgen.New(),
		logger,
	)

	result, err := engine.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}

	logger.Info("crawl finished",
		zap.Int("files_written", result.FilesWritten),
		zap.Int("urls_fetched", result.URLsFetched),
		zap.Int("urls_failed", result.URLsFailed),
	)
	return nil
}

// buildWriter picks the part sink: a GCS bucket when configured, the local
// output directory otherwise.
func buildWriter(ctx context.Context, cfg config.Config) (storage.Provider, error) {
	if cfg.Storage.GCSBucket != "" {
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return gcs.New(client, gcs.Config{
			Bucket: cfg.Storage.GCSBucket,
			Prefix: cfg.Storage.Prefix,
		})
	}
	return local.New(local.Config{BaseDir: cfg.Crawler.OutputDir})
}
