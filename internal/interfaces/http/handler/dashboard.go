package handler

import (
	"github.com/gin-gonic/gin"
	appaccount "github.com/welth/backend/internal/application/account"
	appbudget "github.com/welth/backend/internal/application/budget"
	apptxn "github.com/welth/backend/internal/application/transaction"
)

// DashboardHandler assembles the dashboard view
type DashboardHandler struct {
	BaseHandler
	accountService     AccountService
	transactionService TransactionService
	budgetService      BudgetService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(accountService AccountService, transactionService TransactionService, budgetService BudgetService) *DashboardHandler {
	return &DashboardHandler{
		accountService:     accountService,
		transactionService: transactionService,
		budgetService:      budgetService,
	}
}

// DashboardResponse is the dashboard payload. Budget is computed against the
// default account and is nil when the user has no accounts.
type DashboardResponse struct {
	Accounts     []appaccount.AccountResponse     `json:"accounts"`
	Transactions []apptxn.TransactionResponse     `json:"transactions"`
	Budget       *appbudget.CurrentBudgetResponse `json:"budget"`
}

// Get godoc
// @ID           getDashboard
//
//	@Summary		Get dashboard
//	@Description	Get accounts, all transactions and the default account's budget
//	@Tags			dashboard
//	@Produce		json
//	@Success		200		{object}	dto.Response{data=DashboardResponse}
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}
	ctx := c.Request.Context()

	accounts, err := h.accountService.ListAccounts(ctx, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	transactions, err := h.transactionService.ListDashboardTransactions(ctx, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := DashboardResponse{
		Accounts:     accounts,
		Transactions: transactions,
	}
	for _, acc := range accounts {
		if !acc.IsDefault {
			continue
		}
		resp.Budget, err = h.budgetService.GetCurrentBudget(ctx, userID, acc.ID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		break
	}
	if resp.Accounts == nil {
		resp.Accounts = []appaccount.AccountResponse{}
	}
	if resp.Transactions == nil {
		resp.Transactions = []apptxn.TransactionResponse{}
	}

	h.Success(c, resp)
}
