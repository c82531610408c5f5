package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kgraph/application/ingest"
	"kgraph/application/ports"
	"kgraph/application/services"
	"kgraph/domain/core/aggregates"
	"kgraph/infrastructure/exportsource"
)

type globalOptions struct {
	url     string
	path    string
	file    string
	timeout time.Duration
	verbose bool
	json    bool
}

var opts globalOptions

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphctl",
		Short: "Inspect a knowledge graph export",
		Long: brand.Sprint("graphctl") + " loads a backend graph export and runs the same\n" +
			"filter, neighbor and detail queries the API serves.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.url, "url", "", "backend base URL to fetch the export from")
	flags.StringVar(&opts.path, "path", "/api/v1/graph/", "export path on the backend")
	flags.StringVarP(&opts.file, "file", "f", "", "export file to read instead of a backend")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "fetch timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log ingestion details")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of tables")

	cmd.AddCommand(
		statsCmd(),
		filterCmd(),
		neighborsCmd(),
		detailCmd(),
		reportCmd(),
	)

	return cmd
}

func newLogger() *zap.Logger {
	if !opts.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newSource(logger *zap.Logger) (ports.ExportSource, error) {
	switch {
	case opts.file != "" && opts.url != "":
		return nil, errors.New("use either --file or --url, not both")
	case opts.file != "":
		return exportsource.NewFileSource(opts.file, logger)
	case opts.url != "":
		return exportsource.NewHTTPSource(exportsource.HTTPConfig{
			BaseURL: opts.url,
			Path:    opts.path,
			Timeout: opts.timeout,
			Breaker: exportsource.DefaultBreakerConfig(),
		}, &http.Client{Timeout: opts.timeout}, logger)
	default:
		return nil, errors.New("one of --file or --url is required")
	}
}

// loadStore runs a single ingestion through a session
func loadStore(ctx context.Context) (*aggregates.Store, error) {
	logger := newLogger()
	defer logger.Sync()

	source, err := newSource(logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	session := services.NewGraphSession(source, ingest.NewTransformer(logger), nil, logger)
	return session.Current(ctx)
}
