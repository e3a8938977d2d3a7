// Package cli implements the viewctl command-line interface, which derives
// and exports product views without running the HTTP server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/productview/internal/config"
	"github.com/JonMunkholm/productview/internal/core"
	"github.com/JonMunkholm/productview/internal/logging"
	"github.com/JonMunkholm/productview/internal/source"
)

// Exit codes.
const (
	exitSuccess = 0
	exitFailure = 1
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	source   string
	table    string
	jsonMode bool
	logLevel string
}

// NewRootCmd creates the top-level "viewctl" command with global flags and
// all subcommands registered. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "viewctl",
		Short: "Filter, group, sort and export the product dataset",
		Long: `viewctl loads the product dataset from SOURCE_URL (or --source) and
derives a view from the criteria flags.

Sources:
  ./products.json              JSON array file
  https://host/products        JSON array over HTTP
  postgres://user@host/db      PostgreSQL table (SOURCE_TABLE)
  sqlite:///path/to/data.db    SQLite table (SOURCE_TABLE)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.source, "source", "", "record source URL or path (overrides $SOURCE_URL)")
	root.PersistentFlags().StringVar(&flags.table, "table", "", "table name for database sources (overrides $SOURCE_TABLE)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level written to stderr (overrides $LOG_LEVEL)")

	root.AddCommand(newColumnsCmd(flags))
	root.AddCommand(newFacetsCmd(flags))
	root.AddCommand(newViewCmd(flags))
	root.AddCommand(newExportCmd(flags))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", core.FormatUserError(err))
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}

// lookup layers flag overrides on top of the environment.
func (f *rootFlags) lookup(name string) string {
	switch {
	case name == "SOURCE_URL" && f.source != "":
		return f.source
	case name == "SOURCE_TABLE" && f.table != "":
		return f.table
	case name == "LOG_LEVEL" && f.logLevel != "":
		return f.logLevel
	}
	return os.Getenv(name)
}

// loadService reads configuration, routes logs to stderr and loads the
// record set. Unlike the server, a failed load is fatal here.
func loadService(cmd *cobra.Command, f *rootFlags) (*core.Service, error) {
	cfg, err := config.LoadWith(f.lookup)
	if err != nil {
		return nil, err
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := source.Open(ctx, cfg.SourceOptions())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	svc := core.NewService(core.ServiceConfig{
		Exporter:             core.Exporter{Escape: cfg.Export.Escape},
		MaxConcurrentExports: cfg.Export.MaxConcurrent,
		ExportWaitTime:       cfg.Export.MaxWaitTime,
	})
	if _, err := svc.Load(ctx, src); err != nil {
		return nil, err
	}
	return svc, nil
}
