package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/labcore/lis/internal/config"
	"github.com/labcore/lis/internal/domain/catalog"
	"github.com/labcore/lis/internal/domain/commission"
	"github.com/labcore/lis/internal/domain/doctor"
	"github.com/labcore/lis/internal/domain/expense"
	"github.com/labcore/lis/internal/domain/identity"
	"github.com/labcore/lis/internal/domain/inventory"
	"github.com/labcore/lis/internal/domain/patient"
	"github.com/labcore/lis/internal/domain/settings"
	"github.com/labcore/lis/internal/platform/auth"
	"github.com/labcore/lis/internal/platform/db"
	"github.com/labcore/lis/internal/platform/middleware"
	"github.com/labcore/lis/internal/platform/websocket"
)

const version = "1.0.0"

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(nil)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	e, api := newEcho(cfg, logger)

	hub := websocket.NewHub(logger)
	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(api)

	registerDomains(api, pool, hub, cfg, logger)

	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with its global middleware and the /api/v1 group.
func newEcho(cfg *config.Config, logger zerolog.Logger) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	jwtCfg := auth.JWTConfig{SigningKey: cfg.SigningKey(), Skipper: auth.AuthSkipper}
	if cfg.IsDev() {
		logger.Warn().Msg("development auth: requests without a token run as admin")
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	api := e.Group("/api/v1", middleware.RateLimit(rl))
	return e, api
}

func registerDomains(api *echo.Group, pool *pgxpool.Pool, events websocket.EventPublisher, cfg *config.Config, logger zerolog.Logger) {
	tx := db.NewTxRunner(pool)

	catalogSvc := catalog.NewService(catalog.NewRepoPG(pool))
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)

	doctorSvc := doctor.NewService(doctor.NewRepoPG(pool))
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)

	patientSvc := patient.NewService(patient.NewRepoPG(pool), catalogSvc, doctorSvc, tx, events, logger)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	commissionSvc := commission.NewService(commission.NewPatientFinderPG(pool), logger)
	commission.NewHandler(commissionSvc).RegisterRoutes(api)

	tokens := auth.NewTokenIssuer(cfg.SigningKey(), cfg.JWTTTL)
	identity.NewHandler(identity.NewService(identity.NewRepoPG(pool), tokens, logger)).RegisterRoutes(api)

	inventory.NewHandler(inventory.NewService(inventory.NewRepoPG(pool), tx)).RegisterRoutes(api)
	expense.NewHandler(expense.NewService(expense.NewRepoPG(pool))).RegisterRoutes(api)
	settings.NewHandler(settings.NewService(settings.NewRepoPG(pool), events, logger)).RegisterRoutes(api)
}
