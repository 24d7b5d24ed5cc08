package main

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/config"
	licenseapi "github.com/hushlane/central/internal/license/api"
	licensedb "github.com/hushlane/central/internal/license/database"
	licensesvc "github.com/hushlane/central/internal/license/service"
	"github.com/hushlane/central/internal/middleware"
	registryapi "github.com/hushlane/central/internal/registry/api"
	registrydb "github.com/hushlane/central/internal/registry/database"
	"github.com/hushlane/central/internal/registry/model"
	"github.com/hushlane/central/internal/registry/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("Starting central api server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// configure log level from config
	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// durable store, with an in-memory fallback so the API stays up for
	// version distribution even when Postgres is down at boot
	var store registrydb.Store
	var licenseStore licensesvc.LicenseStore
	db, derr := registrydb.New(ctx, cfg.Database.DSN())
	if derr == nil {
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure registry schema")
		}
		licenseRepo := licensedb.NewLicenseRepo(db)
		if err := licenseRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure licenses schema")
		}
		store = registrydb.NewPgStore(db)
		licenseStore = licenseRepo
	} else {
		log.Error().Err(derr).Msg("postgres unavailable; falling back to in-memory store (state will not survive restart)")
		store = registrydb.NewMemStore()
	}

	staleAfter := cfg.Registry.StaleAfterDuration()

	var cache service.InstanceCache = service.NoopCache{}
	if rdb := service.NewRedisClientFromConfig(&cfg.Redis); rdb != nil {
		cache = service.NewRedisCache(rdb, 2*staleAfter)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("instance cache enabled")
	}

	latest := model.VersionInfo{
		Version:      cfg.Catalog.Version,
		Released:     cfg.Catalog.Released,
		ChangelogURL: cfg.Catalog.ChangelogURL,
		Critical:     cfg.Catalog.Critical,
	}

	processor := service.NewProcessor(store, cache)
	reporting := service.NewReporting(store, latest, staleAfter)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID)

	registryapi.NewApi(router, cfg, registryapi.Deps{
		Processor: processor,
		Reporting: reporting,
		Store:     store,
		Cache:     cache,
	})
	if licenseStore != nil {
		licenseapi.RegisterLicenseRoutes(router, licensesvc.NewService(licenseStore))
	} else {
		log.Warn().Msg("license validation disabled: no durable store")
	}

	log.Info().
		Str("bind_addr", cfg.Server.BindAddr).
		Str("latest_version", latest.Version).
		Dur("stale_after", staleAfter).
		Msg("central api serving")
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start central api server failed")
	}
	log.Info().Msg("central api server exit")
}
