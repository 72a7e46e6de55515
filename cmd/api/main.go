package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/posadmin-api/internal/application/service"
	"github.com/sangkips/posadmin-api/internal/config"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/infrastructure/cache"
	"github.com/sangkips/posadmin-api/internal/infrastructure/database"
	"github.com/sangkips/posadmin-api/internal/infrastructure/events"
	"github.com/sangkips/posadmin-api/internal/infrastructure/metrics"
	"github.com/sangkips/posadmin-api/internal/infrastructure/repository"
	"github.com/sangkips/posadmin-api/internal/presentation/http/handler"
	"github.com/sangkips/posadmin-api/internal/presentation/http/middleware"
	"github.com/sangkips/posadmin-api/internal/presentation/http/routes"
	"github.com/sangkips/posadmin-api/pkg/logger"
	"github.com/sangkips/posadmin-api/pkg/utils"
	"go.uber.org/zap"
)

const idempotencyCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed roles, permissions and the admin user
	if err := database.SeedDefaultData(db, &cfg.Admin); err != nil {
		zlog.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	publisher := events.NewPublisher(cfg.Kafka, zlog)
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	draftStore, closeDrafts := newDraftStore(cfg, zlog)
	defer closeDrafts()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	supplierService := service.NewSupplierService(supplierRepo, productRepo)
	productService := service.NewProductService(productRepo, categoryRepo, supplierRepo)
	customerService := service.NewCustomerService(customerRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, customerRepo, paymentRepo, publisher, appMetrics, zlog)
	draftService := service.NewDraftService(draftStore, productRepo, customerRepo, saleService, zlog)
	paymentService := service.NewPaymentService(paymentRepo, saleRepo, publisher, appMetrics, zlog)
	dashboardService := service.NewDashboardService(saleRepo, productRepo, customerRepo, analyticsRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Category:  handler.NewCategoryHandler(categoryService),
		Supplier:  handler.NewSupplierHandler(supplierService),
		Product:   handler.NewProductHandler(productService),
		Customer:  handler.NewCustomerHandler(customerService),
		Sale:      handler.NewSaleHandler(saleService),
		Draft:     handler.NewDraftHandler(draftService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          zlog,
		Metrics:         appMetrics,
		Gatherer:        registry,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupIdempotencyKeys(ctx, idempotencyRepo, zlog)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("name", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
}

// newDraftStore uses Redis when REDIS_ADDR is set and falls back to memory
// when it is unset or unreachable.
func newDraftStore(cfg *config.Config, zlog *zap.Logger) (domainRepo.DraftStore, func()) {
	if cfg.Redis.Addr == "" {
		zlog.Info("using in-memory draft store", zap.Duration("idle_ttl", cfg.Draft.IdleTTL))
		return cache.NewMemoryDraftStore(cfg.Draft.IdleTTL), func() {}
	}

	store := cache.NewRedisDraftStore(cfg.Redis, cfg.Draft.IdleTTL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		zlog.Warn("redis unreachable, using in-memory draft store", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = store.Close()
		return cache.NewMemoryDraftStore(cfg.Draft.IdleTTL), func() {}
	}

	zlog.Info("using redis draft store", zap.String("addr", cfg.Redis.Addr), zap.Duration("idle_ttl", cfg.Draft.IdleTTL))
	return store, func() { _ = store.Close() }
}

func cleanupIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				zlog.Warn("failed to delete expired idempotency keys", zap.Error(err))
			}
		}
	}
}
