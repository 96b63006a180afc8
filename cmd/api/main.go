package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/geocoder89/qtohub/internal/config"
	"github.com/geocoder89/qtohub/internal/db"
	httpx "github.com/geocoder89/qtohub/internal/http"
	"github.com/geocoder89/qtohub/internal/http/handlers"
	"github.com/geocoder89/qtohub/internal/http/middlewares"
	"github.com/geocoder89/qtohub/internal/observability"
	"github.com/geocoder89/qtohub/internal/redisclient"
	"github.com/geocoder89/qtohub/internal/repo/memory"
	"github.com/geocoder89/qtohub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := config.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: "qtohub-api",
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, scancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	deps := httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Ready:    map[string]handlers.Pinger{},
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		deps.Users = postgres.NewUsersRepo(pool, prom)
		deps.Projects = postgres.NewProjectsRepo(pool, prom)
		deps.Items = postgres.NewItemsRepo(pool, prom)
		deps.Ready["postgres"] = pool
	default:
		log.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		deps.Users = store.Users
		deps.Projects = store.Projects
		deps.Items = store.Items
	}

	created, err := db.EnsureAdminUser(ctx, deps.Users, cfg)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	deps.Sessions, err = auth.NewManager(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rc.Close()

		deps.Limiter = middlewares.NewRedisLimiter(rc.Raw(), "qtohub:ratelimit:login:", cfg.LoginRateLimit, cfg.LoginRateWindow)
		deps.Ready["redis"] = rc
	}

	// set up routers with the log
	router := httpx.NewRouter(deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	log.Info("server shutting down")

	shutdownCtx, shutdownCancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
