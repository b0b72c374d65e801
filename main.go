// Package main provides the main entry point for the Roofline estimation service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/handlers"
	"github.com/peakcrest/roofline/app/middleware"
	"github.com/peakcrest/roofline/app/router"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/config"
	_ "github.com/peakcrest/roofline/docs"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Roofline application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start metrics endpoint on its own port
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics)
	}

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through a rotating file writer
// when configured to do so
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	default:
		log.SetOutput(rotator)
	}
}

// startMetricsServer exposes Prometheus metrics on a dedicated listener
func startMetricsServer(cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	address := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Metrics server starting on %s%s", address, cfg.Path)
	if err := http.ListenAndServe(address, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey,
	// which the estimate flows rely on to detect version races.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// runMigrations brings the schema up to date
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.RoofSlope{},
		&models.PricingRule{},
		&models.QuickEstimate{},
		&models.LineItem{},
		&models.EstimateMacro{},
		&models.MacroLineItem{},
		&models.GeographicPricing{},
		&models.DetailedEstimate{},
		&models.EstimateLineItem{},
	)
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	ruleRepo := repository.NewPricingRuleRepository(db)
	quickRepo := repository.NewQuickEstimateRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	macroRepo := repository.NewEstimateMacroRepository(db)
	detailedRepo := repository.NewDetailedEstimateRepository(db)
	regionRepo := repository.NewGeographicPricingRepository(db)

	// Initialize flows
	leadFlow := businessflow.NewLeadFlow(leadRepo, db)

	quickFlow := businessflow.NewQuickEstimateFlow(
		leadRepo,
		ruleRepo,
		quickRepo,
		db,
		rc,
		&cfg.Cache,
	)

	detailedFlow := businessflow.NewDetailedEstimateFlow(
		leadRepo,
		lineItemRepo,
		macroRepo,
		detailedRepo,
		regionRepo,
		db,
		rc,
		cfg.Pricing,
		&cfg.Cache,
	)

	pricingRuleFlow := businessflow.NewPricingRuleFlow(ruleRepo, db, rc, &cfg.Cache)
	catalogFlow := businessflow.NewCatalogFlow(lineItemRepo, db)
	macroFlow := businessflow.NewEstimateMacroFlow(macroRepo, lineItemRepo, db)
	regionFlow := businessflow.NewGeographicPricingFlow(regionRepo, db, rc, &cfg.Cache)

	// Initialize handlers
	leadHandler := handlers.NewLeadHandler(leadFlow)
	quickHandler := handlers.NewQuickEstimateHandler(quickFlow)
	detailedHandler := handlers.NewDetailedEstimateHandler(detailedFlow)
	pricingRuleHandler := handlers.NewPricingRuleAdminHandler(pricingRuleFlow)
	lineItemHandler := handlers.NewLineItemAdminHandler(catalogFlow)
	macroHandler := handlers.NewEstimateMacroAdminHandler(macroFlow)
	regionHandler := handlers.NewRegionAdminHandler(regionFlow)

	// Initialize admin auth middleware
	adminAuth := middleware.NewAdminAuthMiddleware(cfg.JWT, cfg.Admin)

	// Initialize router
	appRouter := router.NewFiberRouter(
		leadHandler,
		quickHandler,
		detailedHandler,
		pricingRuleHandler,
		lineItemHandler,
		macroHandler,
		regionHandler,
		adminAuth,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
