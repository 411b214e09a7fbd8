package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	appaccount "github.com/welth/backend/internal/application/account"
	appbudget "github.com/welth/backend/internal/application/budget"
	appreceipt "github.com/welth/backend/internal/application/receipt"
	apptxn "github.com/welth/backend/internal/application/transaction"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, userID uuid.UUID, req appaccount.CreateAccountRequest) (*appaccount.AccountResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appaccount.AccountResponse), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]appaccount.AccountResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appaccount.AccountResponse), args.Error(1)
}

func (m *MockAccountService) SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*appaccount.AccountResponse, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appaccount.AccountResponse), args.Error(1)
}

func (m *MockAccountService) GetAccountWithTransactions(ctx context.Context, userID, accountID uuid.UUID) (*appaccount.AccountDetailResponse, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appaccount.AccountDetailResponse), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req apptxn.TransactionRequest) (*apptxn.TransactionResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptxn.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*apptxn.TransactionResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptxn.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, req apptxn.TransactionRequest) (*apptxn.TransactionResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptxn.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) BulkDeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*apptxn.BulkDeleteResult, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptxn.BulkDeleteResult), args.Error(1)
}

func (m *MockTransactionService) ListDashboardTransactions(ctx context.Context, userID uuid.UUID) ([]apptxn.TransactionResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apptxn.TransactionResponse), args.Error(1)
}

type MockReceiptScanner struct {
	mock.Mock
}

func (m *MockReceiptScanner) ScanReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*appreceipt.ScanResult, error) {
	args := m.Called(ctx, userID, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceipt.ScanResult), args.Error(1)
}

type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) GetCurrentBudget(ctx context.Context, userID, accountID uuid.UUID) (*appbudget.CurrentBudgetResponse, error) {
	args := m.Called(ctx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbudget.CurrentBudgetResponse), args.Error(1)
}

func (m *MockBudgetService) UpdateBudget(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*appbudget.BudgetResponse, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbudget.BudgetResponse), args.Error(1)
}
