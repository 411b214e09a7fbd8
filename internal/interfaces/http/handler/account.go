package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appaccount "github.com/welth/backend/internal/application/account"
	"github.com/welth/backend/internal/domain/shared"
)

// AccountService is the account use cases the handler needs
type AccountService interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, req appaccount.CreateAccountRequest) (*appaccount.AccountResponse, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]appaccount.AccountResponse, error)
	SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*appaccount.AccountResponse, error)
	GetAccountWithTransactions(ctx context.Context, userID, accountID uuid.UUID) (*appaccount.AccountDetailResponse, error)
}

// AccountHandler handles account-related API endpoints
type AccountHandler struct {
	BaseHandler
	accountService AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest is the body of POST /accounts. Balance stays a
// string so the service can reject malformed amounts with INVALID_BALANCE.
type CreateAccountRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Type      string `json:"type" binding:"required,oneof=CURRENT SAVINGS"`
	Balance   string `json:"balance" binding:"required,max=32"`
	IsDefault bool   `json:"isDefault"`
}

// Create godoc
// @ID           createAccount
//
//	@Summary		Create account
//	@Description	Create a bank account. The user's first account always becomes the default
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAccountRequest	true	"Account creation request"
//	@Success		201		{object}	dto.Response{data=appaccount.AccountResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), userID, appaccount.CreateAccountRequest{
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// List godoc
// @ID           listAccounts
//
//	@Summary		List accounts
//	@Description	List the user's accounts, newest first, with transaction counts
//	@Tags			accounts
//	@Produce		json
//	@Success		200		{object}	dto.Response{data=[]appaccount.AccountResponse}
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, accounts, len(accounts))
}

// GetByID godoc
// @ID           getAccount
//
//	@Summary		Get account
//	@Description	Get an account with its transactions, newest first
//	@Tags			accounts
//	@Produce		json
//	@Param			id	path		string	true	"Account ID (UUID)"
//	@Success		200		{object}	dto.Response{data=appaccount.AccountDetailResponse}
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.HandleError(c, shared.ErrAccountNotFound)
		return
	}

	account, err := h.accountService.GetAccountWithTransactions(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// SetDefault godoc
// @ID           setDefaultAccount
//
//	@Summary		Set default account
//	@Description	Make the account the user's default. Every other default is cleared
//	@Tags			accounts
//	@Produce		json
//	@Param			id	path		string	true	"Account ID (UUID)"
//	@Success		200		{object}	dto.Response{data=appaccount.AccountResponse}
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/accounts/{id}/default [put]
func (h *AccountHandler) SetDefault(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}
	accountID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.HandleError(c, shared.ErrAccountNotFound)
		return
	}

	account, err := h.accountService.SetDefaultAccount(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}
