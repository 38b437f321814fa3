package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/clinicworks/ehr-system/internal/api"
	"github.com/clinicworks/ehr-system/internal/api/handler"
	"github.com/clinicworks/ehr-system/internal/api/middleware"
	"github.com/clinicworks/ehr-system/internal/core/ports"
	"github.com/clinicworks/ehr-system/internal/core/service"
	"github.com/clinicworks/ehr-system/internal/infrastructure/db/redis"
	"github.com/clinicworks/ehr-system/internal/infrastructure/queue"
	"github.com/clinicworks/ehr-system/internal/pkg/config"
	"github.com/clinicworks/ehr-system/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the EHR API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "ehr-api",
	})

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open record store")
		return err
	}

	readiness := map[string]func(context.Context) error{}

	var limits ports.RateLimitStore
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to redis")
			_ = store.Close(context.Background())
			return err
		}
		limits = redis.NewRateLimitStore(rdb, logger.Component("ratelimit"))
		readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting backed by redis")
	} else {
		memLimits := middleware.NewInMemoryRateLimitStore()
		memLimits.StartCleanup(ctx, time.Minute)
		limits = memLimits
		log.Info().Msg("rate limiting in process")
	}

	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer,
		service.NewAuditService(store.Audit), logger.Component("audit"))
	dispatcher.Start()

	e := api.NewRouter(api.Dependencies{
		Logger:        log,
		Store:         store,
		Tokens:        service.NewTokenCodec(cfg.JWTSecret),
		AuditRecorder: dispatcher,
		RateLimits:    limits,
		LoginLimit:    middleware.RateLimitConfig{Requests: cfg.Limits.LoginRequests, Window: cfg.Limits.LoginWindow},
		APILimit:      middleware.RateLimitConfig{Requests: cfg.Limits.APIRequests, Window: cfg.Limits.APIWindow},
		Cookie: handler.CookieConfig{
			Secure:   cfg.Cookie.Secure,
			SameSite: cfg.SameSite(),
		},
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		BodyLimit:       cfg.HTTP.BodyLimit,
		ReadinessChecks: readiness,
		EnableMetrics:   true,
	})

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit queue did not drain")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("record store close failed")
	}

	log.Info().Msg("server stopped")
	return nil
}
