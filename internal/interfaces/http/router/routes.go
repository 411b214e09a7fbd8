package router

import (
	"github.com/gin-gonic/gin"
	"github.com/welth/backend/internal/interfaces/http/handler"
	"github.com/welth/backend/internal/interfaces/http/middleware"
)

// multipartOverhead is headroom for multipart boundaries and headers on
// top of the image itself.
const multipartOverhead = 1 << 20

// Handlers are the API handlers mounted under /api/v1
type Handlers struct {
	Account     *handler.AccountHandler
	Transaction *handler.TransactionHandler
	Category    *handler.CategoryHandler
	Dashboard   *handler.DashboardHandler
	Budget      *handler.BudgetHandler
}

// RouteOptions tunes individual routes
type RouteOptions struct {
	// ReceiptRateLimit throttles receipt scans; nil leaves them unthrottled
	ReceiptRateLimit gin.HandlerFunc
	// MaxReceiptSize caps the scan-receipt image; zero means no extra cap
	MaxReceiptSize int64
}

// DomainGroups builds the route groups of the Welth API
func DomainGroups(h Handlers, opts RouteOptions) []RouteRegistrar {
	accounts := NewDomainGroup("account", "/accounts")
	accounts.POST("", h.Account.Create)
	accounts.GET("", h.Account.List)
	accounts.GET("/:id", h.Account.GetByID)
	accounts.PUT("/:id/default", h.Account.SetDefault)

	scan := []gin.HandlerFunc{}
	if opts.MaxReceiptSize > 0 {
		scan = append(scan, middleware.BodyLimit(opts.MaxReceiptSize+multipartOverhead))
	}
	if opts.ReceiptRateLimit != nil {
		scan = append(scan, opts.ReceiptRateLimit)
	}
	scan = append(scan, h.Transaction.ScanReceipt)

	transactions := NewDomainGroup("transaction", "/transactions")
	transactions.POST("", h.Transaction.Create)
	transactions.POST("/bulk-delete", h.Transaction.BulkDelete)
	transactions.POST("/scan-receipt", scan...)
	transactions.GET("/:id", h.Transaction.GetByID)
	transactions.PUT("/:id", h.Transaction.Update)

	categories := NewDomainGroup("category", "/categories")
	categories.GET("", h.Category.List)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", h.Dashboard.Get)

	budget := NewDomainGroup("budget", "/budget")
	budget.GET("", h.Budget.Get)
	budget.PUT("", h.Budget.Update)

	return []RouteRegistrar{accounts, transactions, categories, dashboard, budget}
}
