package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/drive"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/source"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/storage"
	"github.com/andresuchdata/pnl-dashboard/backend-go/pkg/logger"
	"github.com/gorilla/mux"
)

// The proxy serves the unauthenticated spreadsheet endpoints used by the
// frontend link preview.
func main() {
	cfg := config.Load()
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component("proxy")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		opts  []source.Option
		files drive.Files
	)
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
		}
		driveService = driveService.WithMaxBytes(cfg.Source.MaxBytes)
		opts = append(opts, source.WithDrive(driveService))
		files = driveService
	}
	if cfg.ObjectStore.Endpoint != "" {
		objects, err := storage.NewMinioClient(cfg.ObjectStore)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object store")
		}
		opts = append(opts, source.WithObjects(objects))
	}

	r := mux.NewRouter()
	drive.NewHandler(source.NewFetcher(cfg.Source, opts...), files, cfg.Drive.FolderID).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.ProxyPort,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.ProxyPort).Msg("Proxy starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Proxy stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Proxy forced to shutdown")
	}
}
