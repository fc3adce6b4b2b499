package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/anyulbade/retail-insights-engine/docs"
	"github.com/anyulbade/retail-insights-engine/internal/cache"
	"github.com/anyulbade/retail-insights-engine/internal/config"
	"github.com/anyulbade/retail-insights-engine/internal/database"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/handler"
	"github.com/anyulbade/retail-insights-engine/internal/middleware"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

const cachePrefix = "retail-insights:"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		if err := database.SeedFixtures(ctx, pool, database.DefaultFixtures()); err != nil {
			return fmt.Errorf("seed fixtures: %w", err)
		}
	}

	var (
		rc          *service.ResultCache
		cachePinger handler.Pinger
	)
	if cfg.RedisURL != "" && cfg.CacheTTL > 0 {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cachePrefix)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisCache.Close()
		rc = &service.ResultCache{Cache: redisCache, TTL: cfg.CacheTTL}
		cachePinger = redisCache
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("result cache enabled")
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	handler.SetupSwagger(router, docs.SwaggerJSON)
	handler.Register(router, newHandlers(repository.NewStore(pool), rc, handler.NewHealthHandler(pool, cachePinger)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

func newHandlers(store service.Acquirer, rc *service.ResultCache, health *handler.HealthHandler) handler.Handlers {
	calc := daterange.NewCalculator()

	return handler.Handlers{
		Health:  health,
		KPI:     handler.NewKPIHandler(service.NewKPIService(store, calc, rc)),
		Insight: handler.NewInsightHandler(service.NewInsightService(store, calc, rc)),
		Customer: handler.NewCustomerHandler(
			service.NewCustomerService(store, calc, rc),
			service.NewSegmentService(store, calc, rc),
		),
		Ranking:   handler.NewRankingHandler(service.NewRankingService(store, calc)),
		Table:     handler.NewTableHandler(service.NewTableService(store, calc, rc)),
		Dimension: handler.NewDimensionHandler(service.NewDimensionService(store)),
	}
}
