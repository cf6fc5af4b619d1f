// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/api"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/drive"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/jobs"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/service"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/source"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/storage"
	"github.com/andresuchdata/pnl-dashboard/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	redisClient, err := cache.Connect(ctx, cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, caching in process only")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	linkCache := cache.NewLinkCache(redisClient, cfg.Cache.LinksTTLSeconds)
	tracker := cache.NewSelectionTracker(redisClient, cfg.Cache.SelectionTTLSeconds)

	fetcher := source.NewFetcher(cfg.Source, fetcherOptions(ctx, cfg)...)

	candidates, err := pnl.LoadCandidates(cfg.Engine.CandidatesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load header candidates")
	}

	linkRepo := postgres.NewLinkRepository(db)
	userRepo := postgres.NewUserRepository(db)
	storeRepo := postgres.NewStoreRepository(db)

	authService := service.NewAuthService(userRepo, cfg.Auth.BcryptCost, cache.NewAuthEpoch(redisClient))
	linkService := service.NewLinkService(linkRepo, linkCache)
	loader := service.NewLoader(linkRepo, fetcher, pnl.NewMapper(candidates), tracker)

	router := api.NewRouter(&api.Services{
		Auth:      authService,
		Links:     linkService,
		Users:     service.NewUserService(userRepo, authService),
		Stores:    service.NewStoreService(storeRepo),
		Dashboard: service.NewDashboardService(loader),
		Financial: service.NewFinancialService(loader),
	}, api.RouterConfig{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		Realm:              cfg.Auth.Realm,
		InvalidCredentials: service.ErrInvalidCredentials,
	})

	if cfg.Jobs.ProbeEnabled {
		probe := jobs.NewProbe(linkService, loader)
		scheduler, err := probe.Schedule(cfg.Jobs.ProbeSchedule, cfg.Jobs.Timezone)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule link probe")
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server exiting")
}

// fetcherOptions wires the optional Drive and object store backends. A
// backend that fails to initialize is skipped; links using it then report a
// fetch error instead of taking the server down.
func fetcherOptions(ctx context.Context, cfg *config.Config) []source.Option {
	log := logger.Component("server")
	var opts []source.Option

	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Warn().Err(err).Msg("Google Drive disabled")
		} else {
			opts = append(opts, source.WithDrive(driveService.WithMaxBytes(cfg.Source.MaxBytes)))
		}
	}

	if cfg.ObjectStore.Endpoint != "" {
		objects, err := storage.NewMinioClient(cfg.ObjectStore)
		if err != nil {
			log.Warn().Err(err).Msg("Object store disabled")
		} else {
			opts = append(opts, source.WithObjects(objects))
		}
	}

	return opts
}
