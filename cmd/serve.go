package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/iso20022-converter/internal/api"
	"github.com/ginjaninja78/iso20022-converter/internal/converter"
)

var listenAddr string

// serveCmd exposes the converter over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter over HTTP",
	Long: `Starts a stateless HTTP server:

  POST /api/v1/convert/{format}   body: legacy text, format: mt103|nacha|auto
  POST /api/v1/validate/{message} body: XML, message: pacs.008|pain.001
  POST /api/v1/detect             body: legacy text
  GET  /healthz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := mainConfig.ServerAddr
		if listenAddr != "" {
			addr = listenAddr
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(converter.New(logger), logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", zap.String("addr", addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Received shutdown signal")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address; overrides server_addr")
}
