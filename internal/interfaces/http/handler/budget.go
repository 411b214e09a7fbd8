package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appbudget "github.com/welth/backend/internal/application/budget"
	"github.com/welth/backend/internal/domain/shared"
)

// BudgetService is the budget use cases the handler needs
type BudgetService interface {
	GetCurrentBudget(ctx context.Context, userID, accountID uuid.UUID) (*appbudget.CurrentBudgetResponse, error)
	UpdateBudget(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*appbudget.BudgetResponse, error)
}

// BudgetHandler handles budget endpoints
type BudgetHandler struct {
	BaseHandler
	budgetService BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetQuery selects the account whose expenses are totalled
type BudgetQuery struct {
	AccountID string `form:"accountId" binding:"required,uuid"`
}

// UpdateBudgetRequest is the body of PUT /budget
type UpdateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

// Get godoc
// @ID           getBudget
//
//	@Summary		Get current budget
//	@Description	Get the user's budget and the account's expenses for the current month
//	@Tags			budget
//	@Produce		json
//	@Param			accountId	query		string	true	"Account ID (UUID)"
//	@Success		200		{object}	dto.Response{data=appbudget.CurrentBudgetResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	var query BudgetQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	accountID, err := uuid.Parse(query.AccountID)
	if err != nil {
		h.HandleError(c, shared.ErrAccountNotFound)
		return
	}

	budget, err := h.budgetService.GetCurrentBudget(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// Update godoc
// @ID           updateBudget
//
//	@Summary		Update budget
//	@Description	Create or update the user's monthly budget
//	@Tags			budget
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateBudgetRequest	true	"Budget amount"
//	@Success		200		{object}	dto.Response{data=appbudget.BudgetResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/budget [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), userID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}
