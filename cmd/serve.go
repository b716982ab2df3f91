package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/config"
	"github.com/lehigh-university-libraries/bookresolver/internal/handlers"
	"github.com/lehigh-university-libraries/bookresolver/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var requestTimeout time.Duration
	var maxScans int
	var cat catalogFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resolution HTTP API",
		Long: `Starts the bookresolver HTTP API on the specified port.

Scanning clients POST OCR text to /api/resolve and get ranked catalog
matches back. A newer request from the same client_id cancels the older one.
The catalog is re-read for every request.`,
		Example: `  # Start server on default port 8888 against a library backend
  bookresolver serve --catalog http://localhost:3000

  # Start server on custom port against a SQLite catalog
  bookresolver serve --port 3000 --catalog library.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			res, err := cfg.NewResolver(slog.Default())
			if err != nil {
				return err
			}
			src, err := cat.open()
			if err != nil {
				return err
			}

			handler := handlers.New(res, src, storage.New(maxScans))

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(requestTimeout),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookresolver API available", "addr", addr, "url", "http://localhost"+addr, "catalog", cat.location)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", time.Minute, "Upper bound on one request, provider calls included (0 disables)")
	cmd.Flags().IntVar(&maxScans, "max-scans", storage.DefaultMaxScans, "Scan history entries kept in memory")
	cat.register(cmd)

	return cmd
}
