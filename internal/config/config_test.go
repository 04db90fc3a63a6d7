package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebind/sitebind/internal/crawler"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
crawler:
  start_url: https://docs.example.com/guide
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Crawler.MaxURLs)
	assert.Equal(t, 99, cfg.Crawler.MaxPartSizeMB)
	assert.Equal(t, 20, cfg.Crawler.Concurrency)
	assert.Equal(t, string(crawler.OutputMarkdown), cfg.Crawler.OutputKind)
	assert.Equal(t, []string{"https://docs.example.com/guide"}, cfg.Crawler.AllowedPrefixes)
	assert.Equal(t, "docs_example_com_guide", cfg.Crawler.OutputName)
}

func TestLoadPDFForcesHTMLStrategy(t *testing.T) {
	path := writeConfig(t, `
crawler:
  start_url: https://docs.example.com/
  output_kind: pdf
  strategy: prioritize-md
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, string(crawler.StrategyHTMLOnly), cfg.Crawler.Strategy)
}

func TestLoadMissingStartURL(t *testing.T) {
	path := writeConfig(t, `
crawler:
  output_kind: md
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestCrawlConfigSizes(t *testing.T) {
	path := writeConfig(t, `
crawler:
  start_url: https://docs.example.com/
  max_part_size_mb: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	cc, err := cfg.CrawlConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), cc.MaxPartBytes)
}
