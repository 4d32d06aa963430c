package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wardenauth/warden/pkg/api"
	"github.com/wardenauth/warden/pkg/auth"
	"github.com/wardenauth/warden/pkg/cache"
	"github.com/wardenauth/warden/pkg/config"
	"github.com/wardenauth/warden/pkg/middleware"
	"github.com/wardenauth/warden/pkg/observability"
	"github.com/wardenauth/warden/pkg/permissions"
	"github.com/wardenauth/warden/pkg/service"
	"github.com/wardenauth/warden/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "warden: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel(), os.Stdout)
	logger.WithFields(map[string]interface{}{
		"port":        cfg.Server.Port,
		"health_port": cfg.Server.HealthPort,
	}).Info("starting warden")

	ctx := context.Background()

	db, err := store.Connect(ctx, store.ConnectionConfig{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		Timeout:     cfg.Database.Timeout,
		MaxLifetime: cfg.Database.MaxLifetime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.RunMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	registry, err := cache.NewRevocationRegistry(cache.Config{
		URL:        cfg.Redis.URL,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		MaxRetries: cfg.Redis.MaxRetries,
		PoolSize:   cfg.Redis.PoolSize,
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("revocation registry connected")

	st := store.NewStore(db)
	refreshStore := store.NewRefreshTokenStore(db)
	resolver := permissions.NewResolver(db)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SigningKey: []byte(cfg.Auth.SigningKey),
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, refreshStore)
	if err != nil {
		db.Close()
		registry.Close()
		return fmt.Errorf("failed to create token service: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(st, hasher, tokens, resolver, registry)
	authn := middleware.NewAuthenticator(tokens, registry)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	server := api.NewServer(logger, metrics, authService, resolver, st, authn, cfg.Server.AllowedOrigins)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, registry))
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sweeper := startSweeper(cfg.Auth.SweepSchedule, refreshStore, metrics, logger)

	bgCtx, cancelBackground := context.WithCancel(ctx)
	if metrics != nil {
		go pollDBStats(bgCtx, metrics, db)
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		cancelBackground()
		if sweeper != nil {
			sweeper.Stop()
		}
		return nil
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return registry.Close()
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// A listener error cancels gctx, which drains the other server and
		// runs the registered shutdown funcs instead of blocking forever.
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

// startSweeper schedules periodic purges of expired refresh token records so
// the table does not grow without bound. Returns nil when the schedule is
// empty or invalid.
func startSweeper(schedule string, tokens *store.RefreshTokenStore, metrics *observability.Metrics, logger *observability.Logger) *cron.Cron {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		swept, err := tokens.DeleteExpired(ctx)
		if err != nil {
			logger.WithError(err).Error("expired token sweep failed")
			return
		}
		if metrics != nil {
			metrics.ExpiredTokensSweptTotal.Add(float64(swept))
		}
		if swept > 0 {
			logger.WithField("count", swept).Info("swept expired refresh tokens")
		}
	})
	if err != nil {
		logger.WithError(err).Errorf("invalid sweep schedule %q, sweeper disabled", schedule)
		return nil
	}

	c.Start()
	return c
}

// pollDBStats mirrors connection pool gauges until the context is cancelled.
func pollDBStats(ctx context.Context, metrics *observability.Metrics, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBStats(db)
		}
	}
}
