package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	httpAdapter "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion service",
	Long:  `Exposes the conversion engine as a JSON API over HTTP, described by an OpenAPI document at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		opts := []httpAdapter.HandlerOption{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRequestValidation(cfg.Server.ValidateRequests),
		}
		if registry != nil {
			opts = append(opts, httpAdapter.WithMetrics(cfg.Metrics.Path, observability.Handler(registry)))
		}
		handler, err := httpAdapter.NewHandler(engine, opts...)
		if err != nil {
			return fmt.Errorf("error initializing server: %w", err)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			if !noBanner {
				tui.PrintBanner(cmd.ErrOrStderr(), cli.ColorProfile(cfg.Output.Color, cmd.ErrOrStderr()))
			}
			logger.Info("Starting weft server", "addr", srv.Addr, "validate_requests", cfg.Server.ValidateRequests, "metrics", registry != nil)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("weft server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
}
