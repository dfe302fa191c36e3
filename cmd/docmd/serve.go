package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/docmd/internal/api"
	"github.com/dgallion1/docmd/internal/config"
	"github.com/dgallion1/docmd/internal/convert"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve DOCX-to-Markdown conversion over HTTP",
	Long: `Serve starts an HTTP server. POST a multipart form with a "file" field
holding a .docx document to /api/convert; the response body is the converted
text. When api_key is set, requests must carry "Authorization: Bearer <key>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "8090", "listen port")
	serveCmd.Flags().String("api-key", "", "bearer token required on /api routes")
	serveCmd.Flags().Int64("max-upload-bytes", 52428800, "largest accepted upload")

	viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))
	viper.BindPFlag(config.KeyAPIKey, serveCmd.Flags().Lookup("api-key"))
	viper.BindPFlag(config.KeyMaxUploadBytes, serveCmd.Flags().Lookup("max-upload-bytes"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(convert.New(log, cmd.OutOrStdout()), log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docmd", "port", cfg.Port, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}
