package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wijeboy/CYD-shop-sub000/internal/cart"
	"github.com/Wijeboy/CYD-shop-sub000/internal/cron"
	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/config"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/db"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/migrate"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	only := flag.String("jobs", "", "comma separated job names to run (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "once": *once})

	if err := run(ctx, cfg, logg, *once, splitJobs(*only)); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker exited")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, once bool, only []string) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cron.LockName), 0)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}

	registry, err := buildRegistry(cfg, dbClient, logg)
	if err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	if registry, err = registry.Select(only); err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	if once {
		return service.RunOnce(ctx)
	}

	if cfg.Cron.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, cfg.Cron.MetricsAddr, logg)
		defer stopMetrics()
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildRegistry(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*cron.Registry, error) {
	abandoned, err := cron.NewAbandonedCartJob(cart.NewRepository(dbClient.DB()), cfg.Cron.AbandonedCartDays, logg)
	if err != nil {
		return nil, err
	}

	storage, err := media.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix)
	if err != nil {
		return nil, err
	}
	orphans, err := cron.NewOrphanUploadJob(storage, products.NewRepository(dbClient.DB()), cfg.Cron.OrphanUploadGrace, logg)
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(abandoned, orphans)
}

// serveMetrics exposes the default registry until the returned func is called.
func serveMetrics(ctx context.Context, addr string, logg *logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "cron metrics server failed", err)
		}
	}()
	logg.Info(logg.WithField(ctx, "addr", addr), "cron metrics listening")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func splitJobs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
