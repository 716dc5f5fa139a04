package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/internal/cli"
	"github.com/kamiazya/scopes/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the gateway exposing the tool catalog as a JSON API over HTTP, with /metrics and /openapi.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(os.Stderr, scopes.Version)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           rt.HTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting HTTP Server", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error { return rt.RunSweeper(gctx) })
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("HTTP Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
