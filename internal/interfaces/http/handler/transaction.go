package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appreceipt "github.com/welth/backend/internal/application/receipt"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/domain/shared"
)

// receiptFormField is the multipart field carrying the receipt image
const receiptFormField = "file"

// TransactionService is the transaction use cases the handler needs
type TransactionService interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, req apptxn.TransactionRequest) (*apptxn.TransactionResponse, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*apptxn.TransactionResponse, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, req apptxn.TransactionRequest) (*apptxn.TransactionResponse, error)
	BulkDeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*apptxn.BulkDeleteResult, error)
	ListDashboardTransactions(ctx context.Context, userID uuid.UUID) ([]apptxn.TransactionResponse, error)
}

// ReceiptScanner extracts a draft transaction from a receipt image
type ReceiptScanner interface {
	ScanReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*appreceipt.ScanResult, error)
}

// TransactionHandler handles transaction-related API endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService TransactionService
	scanner            ReceiptScanner
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService TransactionService, scanner ReceiptScanner) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		scanner:            scanner,
	}
}

// TransactionRequest is the body of POST and PUT /transactions
type TransactionRequest struct {
	AccountID         string          `json:"accountId" binding:"required,uuid"`
	Type              string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount            decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Description       string          `json:"description" binding:"max=500"`
	Date              time.Time       `json:"date" binding:"required"`
	Category          string          `json:"category" binding:"required,max=50"`
	ReceiptURL        string          `json:"receiptUrl" binding:"omitempty,url,max=2048"`
	IsRecurring       bool            `json:"isRecurring"`
	RecurringInterval string          `json:"recurringInterval" binding:"omitempty,recurring_interval"`
}

func (r TransactionRequest) toApp() apptxn.TransactionRequest {
	return apptxn.TransactionRequest{
		AccountID:         uuid.MustParse(r.AccountID),
		Type:              r.Type,
		Amount:            r.Amount,
		Description:       r.Description,
		Date:              r.Date,
		Category:          r.Category,
		ReceiptURL:        r.ReceiptURL,
		IsRecurring:       r.IsRecurring,
		RecurringInterval: r.RecurringInterval,
	}
}

// BulkDeleteRequest is the body of POST /transactions/bulk-delete
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=500,dive,uuid"`
}

// Create godoc
// @ID           createTransaction
//
//	@Summary		Create transaction
//	@Description	Record an income or expense and apply it to the account balance
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TransactionRequest	true	"Transaction request"
//	@Success		201		{object}	dto.Response{data=apptxn.TransactionResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		429		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, req.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, txn)
}

// GetByID godoc
// @ID           getTransaction
//
//	@Summary		Get transaction
//	@Description	Get one of the user's transactions
//	@Tags			transactions
//	@Produce		json
//	@Param			id	path		string	true	"Transaction ID (UUID)"
//	@Success		200		{object}	dto.Response{data=apptxn.TransactionResponse}
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.HandleError(c, shared.ErrTransactionNotFound)
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txn)
}

// Update godoc
// @ID           updateTransaction
//
//	@Summary		Update transaction
//	@Description	Edit a transaction in place and move the balance difference
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"Transaction ID (UUID)"
//	@Param			request	body		TransactionRequest	true	"Transaction request"
//	@Success		200		{object}	dto.Response{data=apptxn.TransactionResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.HandleError(c, shared.ErrTransactionNotFound)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, id, req.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txn)
}

// BulkDelete godoc
// @ID           bulkDeleteTransactions
//
//	@Summary		Delete transactions
//	@Description	Delete several transactions and revert their effect on account balances
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BulkDeleteRequest	true	"Transaction IDs"
//	@Success		200		{object}	dto.Response{data=apptxn.BulkDeleteResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/transactions/bulk-delete [post]
func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	ids := make([]uuid.UUID, len(req.IDs))
	for i, raw := range req.IDs {
		ids[i] = uuid.MustParse(raw)
	}

	result, err := h.transactionService.BulkDeleteTransactions(c.Request.Context(), userID, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ScanReceipt godoc
// @ID           scanReceipt
//
//	@Summary		Scan receipt
//	@Description	Extract amount, date, description and category from a receipt image
//	@Tags			transactions
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Receipt image (image/*, 5 MB max)"
//	@Success		200		{object}	dto.Response{data=appreceipt.ScanResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		413		{object}	dto.Response
//	@Failure		429		{object}	dto.Response
//	@Failure		502		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/transactions/scan-receipt [post]
func (h *TransactionHandler) ScanReceipt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return
	}

	header, err := c.FormFile(receiptFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleError(c, shared.ErrFileTooLarge)
			return
		}
		h.BadRequest(c, "A receipt image is required in the \"file\" field")
		return
	}
	if header.Size > appreceipt.MaxImageSize {
		h.HandleError(c, shared.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, appreceipt.MaxImageSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.scanner.ScanReceipt(c.Request.Context(), userID, image, header.Header.Get("Content-Type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
