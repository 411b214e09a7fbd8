package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welth/backend/internal/interfaces/http/handler"
)

func TestDomainGroups_Routes(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Account:     handler.NewAccountHandler(nil),
		Transaction: handler.NewTransactionHandler(nil, nil),
		Category:    handler.NewCategoryHandler(),
		Dashboard:   handler.NewDashboardHandler(nil, nil, nil),
		Budget:      handler.NewBudgetHandler(nil),
	}
	NewRouter(engine).Register(DomainGroups(h, RouteOptions{MaxReceiptSize: 5 << 20})...).Setup()

	got := make(map[string]bool)
	for _, route := range engine.Routes() {
		got[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/accounts",
		"GET /api/v1/accounts",
		"GET /api/v1/accounts/:id",
		"PUT /api/v1/accounts/:id/default",
		"POST /api/v1/transactions",
		"GET /api/v1/transactions/:id",
		"PUT /api/v1/transactions/:id",
		"POST /api/v1/transactions/bulk-delete",
		"POST /api/v1/transactions/scan-receipt",
		"GET /api/v1/categories",
		"GET /api/v1/dashboard",
		"GET /api/v1/budget",
		"PUT /api/v1/budget",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestDomainGroups_ReceiptRateLimit(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Account:     handler.NewAccountHandler(nil),
		Transaction: handler.NewTransactionHandler(nil, nil),
		Category:    handler.NewCategoryHandler(),
		Dashboard:   handler.NewDashboardHandler(nil, nil, nil),
		Budget:      handler.NewBudgetHandler(nil),
	}
	limited := 0
	deny := func(c *gin.Context) {
		limited++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	NewRouter(engine).Register(DomainGroups(h, RouteOptions{ReceiptRateLimit: deny})...).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/transactions/scan-receipt", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, limited)
}
