// @title Sales Report API
// @version 1.0
// @description Aggregated sales summaries and timestamped text reports.
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"sales-report/internal/config"
	"sales-report/internal/logging"
	"sales-report/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Process exit statuses
const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

var version = "dev"

// app carries what every command needs once flags have been parsed
type app struct {
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sales-report",
		Short: "Summarise sales records into a timestamped text report",
		Long: `sales-report reads a sales table (artisan, product, units_sold, unit_price),
totals units and revenue, ranks artisans and products by revenue, prints the
report and saves it under the output directory.

Input and output locations come from configuration (SALES_REPORT_* environment
variables, .env, or --config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, a.verbose)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pipeline.Run(cmd.Context(), a.cfg.JobSpec(), pipeline.Options{
				Console: cmd.OutOrStdout(),
				Logger:  a.logger,
			})
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(a), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sales-report %s\n", version)
		},
	}
}

// execute runs the CLI and returns the process exit status
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(&app{})
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var notFound *pipeline.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(stderr, "ERROR: input file %s not found\n", notFound.Path)
	} else {
		fmt.Fprintf(stderr, "UNEXPECTED ERROR: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps a run error onto the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pipeline.ErrNotFound):
		return exitNotFound
	default:
		return exitFailure
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
