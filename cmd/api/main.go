package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inventra/pos-backend/api/routes"
	internalauth "github.com/inventra/pos-backend/internal/auth"
	"github.com/inventra/pos-backend/internal/cartsession"
	"github.com/inventra/pos-backend/internal/catalog"
	"github.com/inventra/pos-backend/internal/customers"
	"github.com/inventra/pos-backend/internal/receipts"
	"github.com/inventra/pos-backend/internal/settlement"
	"github.com/inventra/pos-backend/internal/users"
	"github.com/inventra/pos-backend/pkg/auth/session"
	"github.com/inventra/pos-backend/pkg/config"
	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/logger"
	"github.com/inventra/pos-backend/pkg/metrics"
	"github.com/inventra/pos-backend/pkg/migrate"
	"github.com/inventra/pos-backend/pkg/redis"
)

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	authService, err := internalauth.NewService(
		users.NewRepository(dbClient.DB()),
		sessionManager,
		cfg.JWT,
		cfg.Password,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	customerRepo := customers.NewRepository(dbClient.DB())
	customerService, err := customers.NewService(customerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	cartService, err := cartsession.NewService(
		cartsession.NewRedisStore(redisClient),
		catalogRepo,
		cfg.Cart,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart session service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(
		dbClient,
		settlement.NewRepository(dbClient.DB()),
		customerRepo,
		catalogRepo,
		cartService,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:         cfg,
			Logg:        logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Registry:    registry,
			AuthService: authService,
			Catalog:     catalogService,
			Customers:   customerService,
			CartSvc:     cartService,
			Settlement:  settlementService,
			Receipts:    receipts.NewRenderer(cfg.Receipt),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
