// Package cmd defines the CLI commands for the sitebind executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitebind/sitebind/internal/config"
	"github.com/sitebind/sitebind/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitebind",
		Short: "Crawl a site and bind it into size-bounded output parts",
		Long: `sitebind walks every page reachable from a start URL within an
allowed prefix set, converts each page to markdown or renders it to PDF,
and reassembles the results in discovery order into numbered part files
that never exceed a configured size.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sitebind.yaml)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// loadConfig resolves the config file path and loads the full configuration.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("sitebind.yaml"); err == nil {
			path = "sitebind.yaml"
		}
	}
	return config.Load(path)
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logger, lerr := logging.New(true)
		if lerr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Fatal("command execution failed", zap.Error(err))
	}
}
