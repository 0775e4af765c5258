package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmarrero/stockpilot-backend/api/routes"
	"github.com/dmarrero/stockpilot-backend/internal/account"
	"github.com/dmarrero/stockpilot-backend/internal/audit"
	"github.com/dmarrero/stockpilot-backend/internal/auth"
	"github.com/dmarrero/stockpilot-backend/internal/inventory"
	"github.com/dmarrero/stockpilot-backend/internal/locations"
	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/reports"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/internal/users"
	"github.com/dmarrero/stockpilot-backend/pkg/auth/session"
	"github.com/dmarrero/stockpilot-backend/pkg/config"
	"github.com/dmarrero/stockpilot-backend/pkg/db"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
	"github.com/dmarrero/stockpilot-backend/pkg/maps"
	"github.com/dmarrero/stockpilot-backend/pkg/metrics"
	"github.com/dmarrero/stockpilot-backend/pkg/migrate"
	"github.com/dmarrero/stockpilot-backend/pkg/outbox"
	"github.com/dmarrero/stockpilot-backend/pkg/redis"
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

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	stockRepo := inventory.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	locationRepo := locations.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	transferRepo := transfers.NewRepository(conn)
	auditRepo := audit.NewRepository(conn)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Runner:        dbClient,
		StockRepo:     stockRepo,
		ProductRepo:   productRepo,
		LocationRepo:  locationRepo,
		OrderRepo:     orderRepo,
		TransferRepo:  transferRepo,
		AuditRepo:     auditRepo,
		Events:        outboxService,
		Dedupe:        redisClient,
		DedupeTTL:     cfg.Webhook.IdempotencyTTL,
		LedgerMetrics: ledgerMetrics,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{
		Repo:       productRepo,
		LevelsRepo: stockRepo,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	locationParams := locations.ServiceParams{
		Repo:   locationRepo,
		Logger: logg,
	}
	if cfg.Maps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		locationParams.Geocoder = mapsClient
	} else {
		logg.Warn(context.Background(), "maps api key not set, address geocoding disabled")
	}
	locationService, err := locations.NewService(locationParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create location service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.ServiceParams{
		ProductRepo:  productRepo,
		OrderRepo:    orderRepo,
		TransferRepo: transferRepo,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	accountService, err := account.NewService(account.ServiceParams{
		Runner:       dbClient,
		ProductRepo:  productRepo,
		LocationRepo: locationRepo,
		OrderRepo:    orderRepo,
		TransferRepo: transferRepo,
		AuditRepo:    auditRepo,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			SessionManager:   sessionManager,
			AuthService:      authService,
			ProductService:   productService,
			LocationService:  locationService,
			InventoryService: inventoryService,
			ReportService:    reportService,
			AccountService:   accountService,
			OrderRepo:        orderRepo,
			TransferRepo:     transferRepo,
			AuditRepo:        auditRepo,
			Metrics:          registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
