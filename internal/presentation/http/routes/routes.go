package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
	"github.com/sangkips/posadmin-api/internal/infrastructure/metrics"
	"github.com/sangkips/posadmin-api/internal/presentation/http/handler"
	"github.com/sangkips/posadmin-api/internal/presentation/http/middleware"
	"github.com/sangkips/posadmin-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Supplier  *handler.SupplierHandler
	Product   *handler.ProductHandler
	Customer  *handler.CustomerHandler
	Sale      *handler.SaleHandler
	Draft     *handler.DraftHandler
	Payment   *handler.PaymentHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	// Gatherer backs /metrics; the route is skipped when nil.
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(
			deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration,
		))
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.POST("/login", rateLimiter.Middleware(), h.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps, logger)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, logger *zap.Logger) {
	protected.GET("/me", h.Auth.Me)

	protected.GET("/dashboard", middleware.RequirePermission(entity.PermViewDashboard), h.Dashboard.GetStats)

	registerCatalogRoutes(protected, "/categories", catalogRoutes{
		list: h.Category.List, get: h.Category.Get, create: h.Category.Create,
		update: h.Category.Update, remove: h.Category.Delete,
	})
	registerCatalogRoutes(protected, "/suppliers", catalogRoutes{
		list: h.Supplier.List, get: h.Supplier.Get, create: h.Supplier.Create,
		update: h.Supplier.Update, remove: h.Supplier.Delete,
	})
	registerCatalogRoutes(protected, "/products", catalogRoutes{
		list: h.Product.List, get: h.Product.Get, create: h.Product.Create,
		update: h.Product.Update, remove: h.Product.Delete,
	})

	registerCustomerRoutes(protected, h)

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: logger,
	})
	registerSaleRoutes(protected, h, idempotent)

	registerPaymentRoutes(protected, h)
}

type catalogRoutes struct {
	list, get, create, update, remove gin.HandlerFunc
}

// registerCatalogRoutes splits reads (view-catalog) from writes (manage-catalog)
func registerCatalogRoutes(protected *gin.RouterGroup, path string, r catalogRoutes) {
	group := protected.Group(path)
	view := middleware.RequirePermission(entity.PermViewCatalog)
	manage := middleware.RequirePermission(entity.PermManageCatalog)
	{
		group.GET("", view, r.list)
		group.GET("/:id", view, r.get)
		group.POST("", manage, r.create)
		group.PUT("/:id", manage, r.update)
		group.DELETE("/:id", manage, r.remove)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(entity.PermManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	sales := protected.Group("/sales")
	sales.Use(middleware.RequirePermission(entity.PermManageSales))
	{
		sales.GET("", h.Sale.List)
		sales.POST("", idempotent, h.Sale.Create)
		sales.POST("/quote", h.Sale.Quote)
		sales.GET("/:id", h.Sale.Get)
		sales.PUT("/:id", h.Sale.Update)
		sales.POST("/:id/cancel", h.Sale.Cancel)
		sales.DELETE("/:id", h.Sale.Delete)
	}

	drafts := sales.Group("/drafts")
	{
		drafts.POST("", h.Draft.Create)
		drafts.GET("/:id", h.Draft.Get)
		drafts.DELETE("/:id", h.Draft.Discard)
		drafts.POST("/:id/items", h.Draft.AddItem)
		drafts.PATCH("/:id/items/:index", h.Draft.UpdateItem)
		drafts.DELETE("/:id/items/:index", h.Draft.RemoveItem)
		drafts.PUT("/:id/tax", h.Draft.SetTax)
		drafts.POST("/:id/reset", h.Draft.Reset)
		drafts.POST("/:id/submit", idempotent, h.Draft.Submit)
	}
}

func registerPaymentRoutes(protected *gin.RouterGroup, h *Handlers) {
	payments := protected.Group("/payments")
	payments.Use(middleware.RequirePermission(entity.PermManagePayments))
	{
		payments.GET("", h.Payment.List)
		payments.POST("", h.Payment.Create)
		payments.GET("/:id", h.Payment.Get)
		payments.PUT("/:id", h.Payment.Update)
		payments.DELETE("/:id", h.Payment.Delete)
	}
}
