package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/infrastructure/repository"
	"github.com/sangkips/posadmin-api/internal/presentation/http/handler"
	"github.com/sangkips/posadmin-api/internal/presentation/http/middleware"
	"github.com/sangkips/posadmin-api/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func withPermissions(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(handler.ContextUserID, uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"))
		c.Set(handler.ContextPermissions, perms)
		c.Next()
	}
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.GET("/none", middleware.RequirePermission("manage-sales"), ok)
	router.GET("/cashier", withPermissions("view-catalog"), middleware.RequirePermission("manage-catalog"), ok)
	router.GET("/admin", withPermissions("view-catalog", "manage-catalog"), middleware.RequirePermission("manage-catalog"), ok)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/none", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/cashier", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/admin", nil).Code)
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	idem := middleware.Idempotency(middleware.IdempotencyConfig{Repo: repository.NewIdempotencyRepository(db)})

	calls := 0
	status := http.StatusBadRequest
	router := gin.New()
	router.POST("/sales", withPermissions(), idem, func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})

	key := map[string]string{middleware.IdempotencyKeyHeader: "abc"}

	// failures are not stored, so the retry reaches the handler
	w := serve(router, http.MethodPost, "/sales", key)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	status = http.StatusCreated
	w = serve(router, http.MethodPost, "/sales", key)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))

	w = serve(router, http.MethodPost, "/sales", key)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, `{"call":2}`, w.Body.String())
	assert.Equal(t, 2, calls)

	w = serve(router, http.MethodPost, "/sales", map[string]string{middleware.IdempotencyKeyHeader: strings.Repeat("k", 256)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, calls)

	w = serve(router, http.MethodPost, "/sales", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 3, calls)
}

func TestRateLimiterKeysByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(1, 60))
	defer limiter.Stop()

	router := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.GET("/user", withPermissions(), limiter.Middleware(), ok)
	router.GET("/anon", limiter.Middleware(), ok)

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/user", nil).Code)
	w := serve(router, http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// anonymous callers have their own bucket
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/anon", nil).Code)
}
