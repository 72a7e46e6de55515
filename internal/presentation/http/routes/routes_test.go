package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/posadmin-api/internal/application/service"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	"github.com/sangkips/posadmin-api/internal/infrastructure/cache"
	"github.com/sangkips/posadmin-api/internal/infrastructure/database"
	"github.com/sangkips/posadmin-api/internal/infrastructure/events"
	"github.com/sangkips/posadmin-api/internal/infrastructure/metrics"
	"github.com/sangkips/posadmin-api/internal/infrastructure/repository"
	"github.com/sangkips/posadmin-api/internal/presentation/http/handler"
	"github.com/sangkips/posadmin-api/internal/presentation/http/middleware"
	"github.com/sangkips/posadmin-api/internal/presentation/http/routes"
	"github.com/sangkips/posadmin-api/internal/testutil"
	"github.com/sangkips/posadmin-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Meta struct {
		RequestID  string `json:"request_id"`
		Pagination *struct {
			CurrentPage int   `json:"current_page"`
			PerPage     int   `json:"per_page"`
			Total       int64 `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type testServer struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	recorder *events.Recorder
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	require.NoError(t, database.SeedDefaultData(db, &config.AdminConfig{Username: "admin", Password: "admin-pass"}))

	cfg := &config.Config{
		App:       config.AppConfig{Name: "posadmin-api"},
		RateLimit: config.RateLimitConfig{Requests: rateLimit, Duration: 60},
	}

	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	recorder := &events.Recorder{}
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	sales := service.NewSaleService(saleRepo, productRepo, customerRepo, paymentRepo, recorder, m, nil)
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, jwtManager)),
		Category:  handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, productRepo)),
		Supplier:  handler.NewSupplierHandler(service.NewSupplierService(supplierRepo, productRepo)),
		Product:   handler.NewProductHandler(service.NewProductService(productRepo, categoryRepo, supplierRepo)),
		Customer:  handler.NewCustomerHandler(service.NewCustomerService(customerRepo)),
		Sale:      handler.NewSaleHandler(sales),
		Draft:     handler.NewDraftHandler(service.NewDraftService(cache.NewMemoryDraftStore(time.Minute), productRepo, customerRepo, sales, nil)),
		Payment:   handler.NewPaymentHandler(service.NewPaymentService(paymentRepo, saleRepo, recorder, m, nil)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(saleRepo, productRepo, customerRepo, repository.NewAnalyticsRepository(db))),
	}

	limiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(rateLimit, 60))
	t.Cleanup(limiter.Stop)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		Metrics:         m,
		Gatherer:        registry,
		RateLimiter:     limiter,
	})

	return &testServer{t: t, db: db, router: router, recorder: recorder, registry: registry}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(s.t, "Bearer", out.TokenType)
	return out.Token
}

func (s *testServer) createCashier() string {
	s.t.Helper()
	ctx := context.Background()

	hash, err := utils.HashPassword("cashier-pass")
	require.NoError(s.t, err)
	user := &entity.User{FullName: "Cashier", Username: "cashier", Password: hash, IsActive: true}
	userRepo := repository.NewUserRepository(s.db)
	require.NoError(s.t, userRepo.Create(ctx, user))

	role, err := repository.NewRoleRepository(s.db).GetByName(ctx, entity.RoleCashier)
	require.NoError(s.t, err)
	require.NoError(s.t, userRepo.AssignRole(ctx, user, role))

	return s.login("cashier", "cashier-pass")
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t, 100)

	w, env := s.do(http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.login("admin", "admin-pass")
	claims, err := utils.NewJWTManager("test-secret", time.Hour).ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Contains(t, claims.Permissions, entity.PermManageCatalog)

	w, env = s.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Roles []string `json:"roles"`
	}](t, env.Data)
	assert.Equal(t, "admin", me.User.Username)
	assert.Equal(t, []string{entity.RoleAdmin}, me.Roles)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCatalogPermissions(t *testing.T) {
	s := newTestServer(t, 100)
	admin := s.login("admin", "admin-pass")
	cashier := s.createCashier()

	w, env := s.do(http.MethodPost, "/api/categories", cashier, map[string]string{"category_name": "Drinks"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)

	w, env = s.do(http.MethodPost, "/api/categories", admin, map[string]string{"category_name": "Drinks"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}](t, env.Data)
	assert.Equal(t, "drinks", category.Slug)

	w, env = s.do(http.MethodPost, "/api/products", admin, map[string]interface{}{
		"product_name": "Latte",
		"category_id":  category.ID,
		"supplier_id":  "",
		"price":        4.5,
		"stock":        12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[struct {
		Price float64 `json:"price"`
	}](t, env.Data)
	assert.Equal(t, 4.5, product.Price)

	// cashiers can read the catalog
	w, env = s.do(http.MethodGet, "/api/products?search=lat", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]map[string]interface{}](t, env.Data)
	assert.Len(t, items, 1)
	require.NotNil(t, env.Meta.Pagination)
	assert.Equal(t, int64(1), env.Meta.Pagination.Total)
	assert.Equal(t, 10, env.Meta.Pagination.PerPage)

	w, _ = s.do(http.MethodDelete, "/api/categories/"+category.ID, admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodGet, "/api/categories/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleLifecycle(t *testing.T) {
	s := newTestServer(t, 100)
	token := s.createCashier()
	coffee := testutil.SeedProduct(t, s.db, "Coffee", 10000, 10)
	customer := testutil.SeedCustomer(t, s.db, "Jane")

	body := map[string]interface{}{
		"customer_id":    customer.ID.String(),
		"sale_date":      "2024-05-01",
		"tax":            "11",
		"payment_method": "Cash",
		"items": []map[string]interface{}{
			{"product_id": coffee.ID.String(), "quantity": 3, "price": 100, "discount": 10, "price_item": 300, "subtotal": 270},
		},
	}

	w, env := s.do(http.MethodPost, "/api/sales/quote", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode[struct {
		FinalAmount float64 `json:"final_amount"`
	}](t, env.Data)
	assert.Equal(t, 299.7, quote.FinalAmount)

	w, env = s.do(http.MethodPost, "/api/sales", token, body, "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[struct {
		ID          string  `json:"id"`
		InvoiceNo   string  `json:"invoice_no"`
		TotalAmount float64 `json:"total_amount"`
		TaxAmount   float64 `json:"tax_amount"`
		FinalAmount float64 `json:"final_amount"`
		AmountDue   float64 `json:"amount_due"`
		Status      string  `json:"status"`
		Items       []struct {
			PriceItem float64 `json:"price_item"`
			Subtotal  float64 `json:"subtotal"`
		} `json:"items"`
	}](t, env.Data)
	assert.Equal(t, 270.0, sale.TotalAmount)
	assert.Equal(t, 29.7, sale.TaxAmount)
	assert.Equal(t, 299.7, sale.FinalAmount)
	assert.Equal(t, 299.7, sale.AmountDue)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 300.0, sale.Items[0].PriceItem)
	assert.Equal(t, 270.0, sale.Items[0].Subtotal)

	// retry with the same key replays instead of selling twice
	w, env = s.do(http.MethodPost, "/api/sales", token, body, "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	replayed := decode[struct {
		ID string `json:"id"`
	}](t, env.Data)
	assert.Equal(t, sale.ID, replayed.ID)

	var stock entity.Product
	require.NoError(t, s.db.First(&stock, "id = ?", coffee.ID).Error)
	assert.Equal(t, 7, stock.Stock)

	w, env = s.do(http.MethodGet, "/api/sales?start_date=2024-05-01&end_date=2024-05-01", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, env.Data), 1)

	w, _ = s.do(http.MethodGet, "/api/sales?start_date=May", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"sale_id":        sale.ID,
		"amount":         299.7,
		"payment_method": "Cash",
		"status":         "Completed",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/sales/"+sale.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	paid := decode[struct {
		Status     string  `json:"status"`
		AmountPaid float64 `json:"amount_paid"`
	}](t, env.Data)
	assert.Equal(t, "Completed", paid.Status)
	assert.Equal(t, 299.7, paid.AmountPaid)

	w, _ = s.do(http.MethodPost, "/api/sales/"+sale.ID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.db.First(&stock, "id = ?", coffee.ID).Error)
	assert.Equal(t, 10, stock.Stock)

	assert.Equal(t, []events.EventType{
		events.EventSaleCreated,
		events.EventPaymentRecorded,
		events.EventSaleCancelled,
	}, s.recorder.Types())
}

func TestSaleValidationErrors(t *testing.T) {
	s := newTestServer(t, 100)
	token := s.createCashier()
	coffee := testutil.SeedProduct(t, s.db, "Coffee", 1000, 1)

	w, env := s.do(http.MethodPost, "/api/sales", token, map[string]interface{}{
		"customer_id": "nope",
		"items": []map[string]interface{}{
			{"product_id": coffee.ID.String(), "quantity": 1.5},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"customer_id", "items.0.quantity"}, fields)

	w, env = s.do(http.MethodPost, "/api/sales", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": coffee.ID.String(), "quantity": 2},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock for: [Coffee]", env.Message)

	w, _ = s.do(http.MethodPost, "/api/sales", token, map[string]interface{}{"items": []map[string]interface{}{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 2^64+1 must not wrap around to a quantity of 1
	w, env = s.do(http.MethodPost, "/api/sales", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": coffee.ID.String(), "quantity": json.Number("18446744073709551617")},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "items.0.quantity", env.Errors[0].Field)
	assert.Equal(t, "Must be at most 2147483647", env.Errors[0].Message)

	var stock entity.Product
	require.NoError(t, s.db.First(&stock, "id = ?", coffee.ID).Error)
	assert.Equal(t, 1, stock.Stock)
}

func TestDraftEndpoints(t *testing.T) {
	s := newTestServer(t, 100)
	token := s.createCashier()
	admin := s.login("admin", "admin-pass")
	coffee := testutil.SeedProduct(t, s.db, "Coffee", 10000, 10)

	w, env := s.do(http.MethodPost, "/api/sales/drafts", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draftID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID
	base := "/api/sales/drafts/" + draftID

	w, env = s.do(http.MethodPost, base+"/items", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0, decode[struct {
		Index int `json:"index"`
	}](t, env.Data).Index)

	w, env = s.do(http.MethodPatch, base+"/items/0", token, map[string]interface{}{
		"product_id": coffee.ID.String(),
		"quantity":   "3",
		"discount":   10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPut, base+"/tax", token, map[string]interface{}{"tax": 11})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[struct {
		TotalAmount float64 `json:"total_amount"`
		FinalAmount float64 `json:"final_amount"`
	}](t, env.Data)
	assert.Equal(t, 270.0, view.TotalAmount)
	assert.Equal(t, 299.7, view.FinalAmount)

	w, env = s.do(http.MethodPatch, base+"/items/4", token, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Line item index out of range", env.Message)

	w, _ = s.do(http.MethodDelete, base+"/items/first", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// drafts are private to their owner
	w, _ = s.do(http.MethodGet, base, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodPost, base+"/submit", token, map[string]interface{}{"payment_method": "Card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[struct {
		FinalAmount   float64 `json:"final_amount"`
		PaymentMethod string  `json:"payment_method"`
	}](t, env.Data)
	assert.Equal(t, 299.7, sale.FinalAmount)
	assert.Equal(t, "Card", sale.PaymentMethod)

	w, _ = s.do(http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, 100)
	token := s.createCashier()
	testutil.SeedProduct(t, s.db, "Coffee", 10000, 1)

	w, env := s.do(http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[struct {
		TotalProducts  int64             `json:"total_products"`
		LowStockCount  int64             `json:"low_stock_count"`
		RecentSales    []json.RawMessage `json:"recent_sales"`
		DailySalesData []json.RawMessage `json:"daily_sales_data"`
	}](t, env.Data)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.NotNil(t, stats.RecentSales)
	assert.Len(t, stats.DailySalesData, 7)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	token := s.login("admin", "admin-pass")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w, _ := s.do(http.MethodGet, "/api/me", token, nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 100)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`http_requests_total{method="GET",route="/health",status="%d"} 1`, http.StatusOK))
}
