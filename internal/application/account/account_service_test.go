package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"go.uber.org/zap"
)

func newTestService() (*AccountService, *MockAccountRepository, *MockTransactionRepository, *MockEventPublisher) {
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := NewAccountService(accountRepo, txRepo, NewNoOpTransactionScope(accountRepo), zap.NewNop())
	svc.SetEventPublisher(publisher)
	return svc, accountRepo, txRepo, publisher
}

func TestAccountService_CreateAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("first account is forced default", func(t *testing.T) {
		svc, repo, _, publisher := newTestService()
		repo.On("CountForUser", mock.Anything, userID).Return(int64(0), nil)
		repo.On("ClearDefaultForUser", mock.Anything, userID).Return(nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a *account.Account) bool {
			return a.IsDefault && a.Balance.Equal(decimal.RequireFromString("150.75"))
		})).Return(nil)

		resp, err := svc.CreateAccount(context.Background(), userID, CreateAccountRequest{
			Name:    "Everyday",
			Type:    "CURRENT",
			Balance: "150.75",
		})

		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
		assert.Equal(t, "CURRENT", resp.Type)
		repo.AssertExpectations(t)
		publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("non default account leaves existing default", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("CountForUser", mock.Anything, userID).Return(int64(2), nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.CreateAccount(context.Background(), userID, CreateAccountRequest{
			Name:    "Rainy day",
			Type:    "SAVINGS",
			Balance: "0",
		})

		require.NoError(t, err)
		assert.False(t, resp.IsDefault)
		repo.AssertNotCalled(t, "ClearDefaultForUser", mock.Anything, mock.Anything)
	})

	t.Run("new default clears the others first", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		var calls []string
		repo.On("CountForUser", mock.Anything, userID).Return(int64(1), nil)
		repo.On("ClearDefaultForUser", mock.Anything, userID).
			Run(func(mock.Arguments) { calls = append(calls, "clear") }).Return(nil)
		repo.On("Create", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, "create") }).Return(nil)

		_, err := svc.CreateAccount(context.Background(), userID, CreateAccountRequest{
			Name:      "Joint",
			Type:      "CURRENT",
			Balance:   "10",
			IsDefault: true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"clear", "create"}, calls)
	})

	t.Run("invalid balance", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		_, err := svc.CreateAccount(context.Background(), userID, CreateAccountRequest{
			Name:    "Bad",
			Type:    "CURRENT",
			Balance: "12abc",
		})

		assert.ErrorIs(t, err, shared.ErrInvalidBalance)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("CountForUser", mock.Anything, userID).Return(int64(1), nil)

		_, err := svc.CreateAccount(context.Background(), userID, CreateAccountRequest{
			Name:    "Broker",
			Type:    "INVESTMENT",
			Balance: "1",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ACCOUNT_TYPE", domainErr.Code)
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	userID := uuid.New()

	t.Run("loads from repository and caches", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		cache := new(MockViewCache)
		svc.SetViewCache(cache)

		acc, err := account.NewAccount(userID, "Main", account.AccountTypeCurrent, decimal.NewFromInt(5), true)
		require.NoError(t, err)
		acc.TransactionCount = 4

		cache.On("Get", mock.Anything, userID, shared.ViewAccounts, mock.Anything).Return(shared.ViewVersion(7), false, nil)
		repo.On("FindAllForUser", mock.Anything, userID).Return([]*account.Account{acc}, nil)
		cache.On("Set", mock.Anything, userID, shared.ViewAccounts, shared.ViewVersion(7), mock.Anything).Return(nil)

		resp, err := svc.ListAccounts(context.Background(), userID)

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, int64(4), resp[0].TransactionCount)
		cache.AssertExpectations(t)
	})

	t.Run("serves cached view", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		cache := new(MockViewCache)
		svc.SetViewCache(cache)

		cache.On("Get", mock.Anything, userID, shared.ViewAccounts, mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(3).(*[]AccountResponse) = []AccountResponse{{Name: "Cached"}}
			}).
			Return(shared.ViewVersion(0), true, nil)

		resp, err := svc.ListAccounts(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, "Cached", resp[0].Name)
		repo.AssertNotCalled(t, "FindAllForUser", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindAllForUser", mock.Anything, userID).Return(nil, errors.New("db down"))

		_, err := svc.ListAccounts(context.Background(), userID)
		assert.Error(t, err)
	})
}

func TestAccountService_SetDefaultAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("switches default", func(t *testing.T) {
		svc, repo, _, publisher := newTestService()
		acc, err := account.NewAccount(userID, "Second", account.AccountTypeSavings, decimal.Zero, true)
		require.NoError(t, err)

		repo.On("ClearDefaultForUser", mock.Anything, userID).Return(nil)
		repo.On("SetDefault", mock.Anything, userID, acc.ID).Return(nil)
		repo.On("FindByIDForUser", mock.Anything, userID, acc.ID).Return(acc, nil)

		resp, err := svc.SetDefaultAccount(context.Background(), userID, acc.ID)

		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("foreign account fails", func(t *testing.T) {
		svc, repo, _, publisher := newTestService()
		foreign := uuid.New()

		repo.On("ClearDefaultForUser", mock.Anything, userID).Return(nil)
		repo.On("SetDefault", mock.Anything, userID, foreign).Return(shared.ErrAccountNotFound)

		_, err := svc.SetDefaultAccount(context.Background(), userID, foreign)

		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestAccountService_GetAccountWithTransactions(t *testing.T) {
	userID := uuid.New()

	t.Run("returns account and transactions", func(t *testing.T) {
		svc, repo, txRepo, _ := newTestService()
		acc, err := account.NewAccount(userID, "Main", account.AccountTypeCurrent, decimal.NewFromInt(100), true)
		require.NoError(t, err)

		t1, err := transaction.NewTransaction(userID, transaction.Details{
			AccountID: acc.ID,
			Type:      transaction.TransactionTypeExpense,
			Amount:    decimal.NewFromInt(10),
			Date:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Category:  "food",
		})
		require.NoError(t, err)

		repo.On("FindByIDForUser", mock.Anything, userID, acc.ID).Return(acc, nil)
		txRepo.On("FindByAccount", mock.Anything, userID, acc.ID).Return([]*transaction.Transaction{t1}, nil)

		resp, err := svc.GetAccountWithTransactions(context.Background(), userID, acc.ID)

		require.NoError(t, err)
		assert.Equal(t, acc.ID, resp.ID)
		assert.Equal(t, int64(1), resp.TransactionCount)
		require.Len(t, resp.Transactions, 1)
		assert.Equal(t, t1.ID, resp.Transactions[0].ID)
	})

	t.Run("missing account", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		id := uuid.New()
		repo.On("FindByIDForUser", mock.Anything, userID, id).Return(nil, shared.ErrAccountNotFound)

		_, err := svc.GetAccountWithTransactions(context.Background(), userID, id)
		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
	})
}
