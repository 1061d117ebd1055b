package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	_ "github.com/internhub/portal/docs" // swagger docs

	"github.com/internhub/portal/internal/api"
	"github.com/internhub/portal/internal/api/handler"
	"github.com/internhub/portal/internal/api/metrics"
	"github.com/internhub/portal/internal/core/ports"
	"github.com/internhub/portal/internal/core/service"
	"github.com/internhub/portal/internal/core/validation"
	"github.com/internhub/portal/internal/infrastructure/backend"
	"github.com/internhub/portal/internal/infrastructure/config"
	"github.com/internhub/portal/internal/infrastructure/redis"
	"github.com/internhub/portal/internal/infrastructure/session"
	"github.com/internhub/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Intern Portal API
// @version      1.0
// @description  Session, access control, shared clock and form validation endpoints of the intern portal.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Pretty: true})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "portal",
	})

	// --- Session store ---
	cookieOpts := session.CookieOptions{TTL: cfg.Session.TTL, Secure: cfg.Session.CookieSecure}
	ready := map[string]handler.Pinger{}

	var store ports.SessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			IOTimeout: cfg.Redis.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer closeRedis(rdb)
		store = session.NewRedisStore(rdb, cookieOpts)
		ready["redis"] = redis.Pinger(rdb, cfg.Redis.Timeout)
	default:
		store = session.NewCookieStore(cookieOpts)
	}
	log.Info().Str("backend", cfg.Session.Backend).Dur("ttl", cfg.Session.TTL).Msg("session store ready")

	// --- Backend client ---
	client, err := backend.New(
		backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout},
		logger.Component("backend"),
		backend.WithObserver(metrics.ObserveBackend),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configure backend client")
	}
	ready["backend"] = client.Ping

	// --- Shared context ---
	shared := service.NewContextProvider(cfg.Location(), logger.Component("clock"), service.WithTaskTTL(cfg.Session.TTL))
	shared.Start(ctx)
	defer shared.Stop()

	e := api.NewRouter(api.Dependencies{
		Log:       log,
		Store:     store,
		Backend:   client,
		Shared:    shared,
		Validator: validation.New(cfg.PasswordPolicy(), validation.WithLocation(cfg.Location())),
		Ready:     ready,
		AssetsDir: cfg.AssetsDir,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("backend", cfg.Backend.URL).Msg("portal listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	stop() // a second signal kills the process
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}
	log.Info().Msg("server exited")
}

func closeRedis(rdb *goredis.Client) {
	_ = rdb.Close()
}
