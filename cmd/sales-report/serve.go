package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-report/internal/api"
	"sales-report/internal/api/handler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve summaries and report generation over HTTP",
		Long: `Starts an HTTP server exposing:
  GET  /api/v1/health
  GET  /api/v1/summary   aggregate the configured input
  POST /api/v1/reports   aggregate and write a report file
  GET  /swagger/*        API documentation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	h := handler.NewReportHandler(a.cfg.JobSpec(), a.cfg.Server.RunTimeout, a.logger)
	r := api.NewRouter(h, a.logger)
	srv := r.Server(a.cfg.Server.Address, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped gracefully")
	return nil
}
