package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appreceipt "github.com/welth/backend/internal/application/receipt"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/ratelimit"
	"github.com/welth/backend/internal/interfaces/http/middleware"
)

func setupTransactionRouter(userID uuid.UUID) (*gin.Engine, *MockTransactionService, *MockReceiptScanner) {
	svc := new(MockTransactionService)
	scanner := new(MockReceiptScanner)
	h := NewTransactionHandler(svc, scanner)

	r := gin.New()
	r.Use(withUser(userID))
	r.POST("/transactions", h.Create)
	r.GET("/transactions/:id", h.GetByID)
	r.PUT("/transactions/:id", h.Update)
	r.POST("/transactions/bulk-delete", h.BulkDelete)
	r.POST("/transactions/scan-receipt", h.ScanReceipt)
	return r, svc, scanner
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func receiptUpload(t *testing.T, contentType string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="receipt.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transactions/scan-receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTransactionHandler_Create(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()

	t.Run("created", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("CreateTransaction", mock.Anything, userID, mock.MatchedBy(func(req apptxn.TransactionRequest) bool {
			return req.AccountID == accountID &&
				req.Type == "EXPENSE" &&
				req.Amount.Equal(decimal.RequireFromString("42.5")) &&
				req.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) &&
				req.IsRecurring && req.RecurringInterval == "MONTHLY"
		})).Return(&apptxn.TransactionResponse{ID: uuid.New(), AccountID: accountID, Status: "COMPLETED"}, nil)

		body := `{"accountId":"` + accountID.String() + `","type":"EXPENSE","amount":"42.50",` +
			`"description":"Groceries","date":"2026-03-01T00:00:00Z","category":"groceries",` +
			`"isRecurring":true,"recurringInterval":"MONTHLY"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions", body))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "COMPLETED", decodeResponse(t, w).Data.(map[string]any)["status"])
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"zero amount", `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":"0","date":"2026-03-01T00:00:00Z","category":"salary"}`, "amount"},
		{"negative amount", `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":-3,"date":"2026-03-01T00:00:00Z","category":"salary"}`, "amount"},
		{"bad type", `{"accountId":"` + accountID.String() + `","type":"TRANSFER","amount":"3","date":"2026-03-01T00:00:00Z","category":"salary"}`, "type"},
		{"bad interval", `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":"3","date":"2026-03-01T00:00:00Z","category":"salary","isRecurring":true,"recurringInterval":"HOURLY"}`, "recurringInterval"},
		{"missing date", `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":"3","category":"salary"}`, "date"},
		{"bad account id", `{"accountId":"abc","type":"INCOME","amount":"3","date":"2026-03-01T00:00:00Z","category":"salary"}`, "accountId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc, _ := setupTransactionRouter(userID)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions", tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			fields := make([]string, 0, len(resp.Error.Details))
			for _, d := range resp.Error.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
			svc.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("rate limited", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("CreateTransaction", mock.Anything, userID, mock.Anything).Return(nil, &apptxn.RateLimitError{
			Decision: ratelimit.Decision{Limit: 10, ResetIn: time.Hour},
		})

		body := `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":"3","date":"2026-03-01T00:00:00Z","category":"salary"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions", body))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeResponse(t, w).Error.Code)
		assert.Equal(t, "3600", w.Header().Get(middleware.HeaderRateLimitReset))
	})

	t.Run("foreign account", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("CreateTransaction", mock.Anything, userID, mock.Anything).Return(nil, shared.ErrAccountNotFound)

		body := `{"accountId":"` + uuid.NewString() + `","type":"INCOME","amount":"3","date":"2026-03-01T00:00:00Z","category":"salary"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions", body))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransactionHandler_GetAndUpdate(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	accountID := uuid.New()

	t.Run("get", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("GetTransaction", mock.Anything, userID, id).Return(&apptxn.TransactionResponse{ID: id}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), decodeResponse(t, w).Data.(map[string]any)["id"])
	})

	t.Run("get malformed id", func(t *testing.T) {
		r, _, _ := setupTransactionRouter(userID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions/xyz", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "TRANSACTION_NOT_FOUND", decodeResponse(t, w).Error.Code)
	})

	t.Run("update", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("UpdateTransaction", mock.Anything, userID, id, mock.MatchedBy(func(req apptxn.TransactionRequest) bool {
			return req.Type == "INCOME" && req.Amount.Equal(decimal.NewFromInt(900))
		})).Return(&apptxn.TransactionResponse{ID: id, Type: "INCOME"}, nil)

		body := `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":900,"date":"2026-03-05T10:00:00Z","category":"salary"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPut, "/transactions/"+id.String(), body))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("update of another user's transaction", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("UpdateTransaction", mock.Anything, userID, id, mock.Anything).Return(nil, shared.ErrTransactionNotFound)

		body := `{"accountId":"` + accountID.String() + `","type":"INCOME","amount":900,"date":"2026-03-05T10:00:00Z","category":"salary"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPut, "/transactions/"+id.String(), body))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransactionHandler_BulkDelete(t *testing.T) {
	userID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		a, b := uuid.New(), uuid.New()
		svc.On("BulkDeleteTransactions", mock.Anything, userID, []uuid.UUID{a, b}).
			Return(&apptxn.BulkDeleteResult{Deleted: 2, AccountIDs: []uuid.UUID{uuid.New()}}, nil)

		body := `{"ids":["` + a.String() + `","` + b.String() + `"]}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions/bulk-delete", body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decodeResponse(t, w).Data.(map[string]any)["deleted"])
	})

	t.Run("empty list", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions/bulk-delete", `{"ids":[]}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "BulkDeleteTransactions", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nothing owned", func(t *testing.T) {
		r, svc, _ := setupTransactionRouter(userID)
		svc.On("BulkDeleteTransactions", mock.Anything, userID, mock.Anything).Return(nil, shared.ErrNoTransactionsFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions/bulk-delete", `{"ids":["`+uuid.NewString()+`"]}`))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NO_TRANSACTIONS_FOUND", decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		r, _, _ := setupTransactionRouter(userID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(http.MethodPost, "/transactions/bulk-delete", `{"ids":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_JSON", decodeResponse(t, w).Error.Code)
	})
}

func TestTransactionHandler_ScanReceipt(t *testing.T) {
	userID := uuid.New()

	t.Run("scanned", func(t *testing.T) {
		r, _, scanner := setupTransactionRouter(userID)
		image := []byte("\xff\xd8\xff\xe0jpeg-bytes")
		scanner.On("ScanReceipt", mock.Anything, userID, image, "image/jpeg").Return(&appreceipt.ScanResult{
			IsReceipt:    true,
			Amount:       decimal.RequireFromString("23.40"),
			MerchantName: "Corner Shop",
			Category:     "groceries",
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, receiptUpload(t, "image/jpeg", image))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "Corner Shop", data["merchantName"])
		assert.Equal(t, "23.4", data["amount"])
		scanner.AssertExpectations(t)
	})

	t.Run("not an image", func(t *testing.T) {
		r, _, scanner := setupTransactionRouter(userID)
		scanner.On("ScanReceipt", mock.Anything, userID, mock.Anything, "application/pdf").Return(nil, shared.ErrInvalidFileType)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, receiptUpload(t, "application/pdf", []byte("%PDF")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FILE_TYPE", decodeResponse(t, w).Error.Code)
	})

	t.Run("too large", func(t *testing.T) {
		r, _, scanner := setupTransactionRouter(userID)
		image := bytes.Repeat([]byte{0xff}, appreceipt.MaxImageSize+1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, receiptUpload(t, "image/png", image))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "FILE_TOO_LARGE", decodeResponse(t, w).Error.Code)
		scanner.AssertNotCalled(t, "ScanReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		r, _, _ := setupTransactionRouter(userID)
		req := httptest.NewRequest(http.MethodPost, "/transactions/scan-receipt", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("model failure", func(t *testing.T) {
		r, _, scanner := setupTransactionRouter(userID)
		scanner.On("ScanReceipt", mock.Anything, userID, mock.Anything, "image/png").
			Return(nil, &appreceipt.ScanError{Cause: shared.ErrInvalidModelResponse})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, receiptUpload(t, "image/png", []byte("png")))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
