package budget

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/budget"
	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/email"
	"go.uber.org/zap"
)

type alertFixture struct {
	svc         *AlertService
	budgetRepo  *MockBudgetRepository
	accountRepo *MockAccountRepository
	txRepo      *MockTransactionRepository
	userRepo    *MockUserRepository
	mailer      *MockMailer
}

func newAlertFixture() *alertFixture {
	f := &alertFixture{
		budgetRepo:  new(MockBudgetRepository),
		accountRepo: new(MockAccountRepository),
		txRepo:      new(MockTransactionRepository),
		userRepo:    new(MockUserRepository),
		mailer:      new(MockMailer),
	}
	f.svc = NewAlertService(f.budgetRepo, f.accountRepo, f.txRepo, f.userRepo, f.mailer,
		AlertServiceConfig{}, zap.NewNop())
	return f
}

// expectBudget wires a budget of amount whose default account has spent expenses this month
func (f *alertFixture) expectBudget(t *testing.T, amount, expenses int64) (*budget.Budget, *account.Account, *identity.User) {
	t.Helper()
	user, err := identity.NewUser("user_"+uuid.NewString(), identity.Profile{Email: "ana@example.com", Name: "Ana"})
	require.NoError(t, err)
	b, err := budget.NewBudget(user.ID, decimal.NewFromInt(amount))
	require.NoError(t, err)
	acc, err := account.NewAccount(user.ID, "Everyday", account.AccountTypeCurrent, decimal.Zero, true)
	require.NoError(t, err)

	f.accountRepo.On("FindDefaultForUser", mock.Anything, user.ID).Return(acc, nil)
	f.txRepo.On("SumExpenses", mock.Anything, user.ID, acc.ID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(expenses), nil)
	f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Maybe()
	f.txRepo.On("FindByAccount", mock.Anything, user.ID, acc.ID).Return([]*transaction.Transaction{}, nil).Maybe()
	return b, acc, user
}

func TestAlertService_CheckBudgetAlerts(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

	t.Run("sends alert at threshold", func(t *testing.T) {
		f := newAlertFixture()
		b, _, user := f.expectBudget(t, 1000, 800)
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Email) bool {
			return msg.To == user.Email &&
				msg.Subject == "Budget Alert for Everyday" &&
				strings.Contains(msg.HTML, "80.0%")
		})).Return(email.SendResult{Success: true, ID: "em_1"})
		f.budgetRepo.On("UpdateLastAlertSent", mock.Anything, b.ID, now).Return(nil)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, &AlertSummary{Checked: 1, Alerted: 1}, summary)
		require.NotNil(t, b.LastAlertSent)
		f.budgetRepo.AssertExpectations(t)
	})

	t.Run("below threshold is skipped", func(t *testing.T) {
		f := newAlertFixture()
		b, _, _ := f.expectBudget(t, 1000, 799)
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("already alerted this month", func(t *testing.T) {
		f := newAlertFixture()
		b, _, _ := f.expectBudget(t, 100, 95)
		sent := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
		b.LastAlertSent = &sent
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("alerted last month alerts again", func(t *testing.T) {
		f := newAlertFixture()
		b, _, _ := f.expectBudget(t, 100, 95)
		sent := time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC)
		b.LastAlertSent = &sent
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(email.SendResult{Success: true})
		f.budgetRepo.On("UpdateLastAlertSent", mock.Anything, b.ID, now).Return(nil)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Alerted)
	})

	t.Run("no default account is skipped", func(t *testing.T) {
		f := newAlertFixture()
		b, err := budget.NewBudget(uuid.New(), decimal.NewFromInt(100))
		require.NoError(t, err)
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)
		f.accountRepo.On("FindDefaultForUser", mock.Anything, b.UserID).Return(nil, shared.ErrAccountNotFound)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, &AlertSummary{Checked: 1, Skipped: 1}, summary)
	})

	t.Run("failed send keeps last alert unset", func(t *testing.T) {
		f := newAlertFixture()
		b, _, _ := f.expectBudget(t, 100, 90)
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{b}, nil)
		f.mailer.On("Send", mock.Anything, mock.Anything).
			Return(email.SendResult{Err: errors.New("provider unavailable")})

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Nil(t, b.LastAlertSent)
		f.budgetRepo.AssertNotCalled(t, "UpdateLastAlertSent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("one failing budget does not stop the run", func(t *testing.T) {
		f := newAlertFixture()
		broken, err := budget.NewBudget(uuid.New(), decimal.NewFromInt(100))
		require.NoError(t, err)
		f.accountRepo.On("FindDefaultForUser", mock.Anything, broken.UserID).Return(nil, errors.New("db down"))

		ok, _, _ := f.expectBudget(t, 100, 100)
		f.budgetRepo.On("FindAll", mock.Anything).Return([]*budget.Budget{broken, ok}, nil)
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(email.SendResult{Success: true})
		f.budgetRepo.On("UpdateLastAlertSent", mock.Anything, ok.ID, now).Return(nil)

		summary, err := f.svc.CheckBudgetAlerts(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, &AlertSummary{Checked: 2, Alerted: 1, Failed: 1}, summary)
	})

	t.Run("load failure", func(t *testing.T) {
		f := newAlertFixture()
		f.budgetRepo.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.svc.CheckBudgetAlerts(context.Background(), now)
		assert.Error(t, err)
	})
}
