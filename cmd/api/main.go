package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Wijeboy/CYD-shop-sub000/api/routes"
	"github.com/Wijeboy/CYD-shop-sub000/internal/auth"
	"github.com/Wijeboy/CYD-shop-sub000/internal/cart"
	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/internal/orders"
	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/internal/users"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/auth/session"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/config"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/db"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/migrate"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	shopMetrics := metrics.NewShopMetrics(registry)

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	storage, err := media.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix)
	if err != nil {
		return err
	}
	mediaService, err := media.NewService(storage, cfg.Storage.MaxUploadBytes(), logg)
	if err != nil {
		return err
	}

	productService, err := products.NewService(productRepo, mediaService, logg)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartRepo, dbClient, shopMetrics, logg)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orders.NewRepository(gdb), cartRepo, dbClient, shopMetrics, logg)
	if err != nil {
		return err
	}
	customerService, err := users.NewCustomerService(userRepo)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Metrics:     registry,
		HTTPMetrics: httpMetrics,
		Auth:        authService,
		Products:    productService,
		Catalog:     productRepo,
		Cart:        cartService,
		Orders:      orderService,
		Customers:   customerService,
		Media:       mediaService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
