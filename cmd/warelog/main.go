package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warelog/warelog/internal/app"
	"github.com/warelog/warelog/internal/catalog/partners"
	"github.com/warelog/warelog/internal/catalog/products"
	"github.com/warelog/warelog/internal/catalog/warehouses"
	"github.com/warelog/warelog/internal/dashboard"
	"github.com/warelog/warelog/internal/platform/cache"
	"github.com/warelog/warelog/internal/platform/db"
	"github.com/warelog/warelog/internal/shared"
	"github.com/warelog/warelog/internal/stock"
	"github.com/warelog/warelog/internal/transactions"
	"github.com/warelog/warelog/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	partnersRepo := partners.NewRepository(pool)
	partnersService := partners.NewService(partnersRepo)
	partnersHandler := partners.NewHandler(logger, partnersService)

	warehousesRepo := warehouses.NewRepository(pool)
	warehousesService := warehouses.NewService(warehousesRepo)
	warehousesHandler := warehouses.NewHandler(logger, warehousesService)

	stockRepo := stock.NewRepository(pool)
	stockHandler := stock.NewHandler(logger, stockRepo)

	txRepo := transactions.NewRepository(pool)
	txService := transactions.NewService(txRepo, stockRepo, auditLogger, logger)
	txHandler := transactions.NewHandler(logger, txService)

	dashRepo := dashboard.NewRepository(pool)
	dashService := dashboard.NewService(dashRepo, redisClient, logger)
	dashHandler := dashboard.NewHandler(logger, dashService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ProductsHandler:     productsHandler,
		PartnersHandler:     partnersHandler,
		WarehousesHandler:   warehousesHandler,
		StockHandler:        stockHandler,
		TransactionsHandler: txHandler,
		DashboardHandler:    dashHandler,
		JobHandler:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
