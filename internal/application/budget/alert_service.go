package budget

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/budget"
	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/email"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Budget alert outcomes, used as metric attributes
const (
	AlertOutcomeSent    = "sent"
	AlertOutcomeSkipped = "skipped"
	AlertOutcomeFailed  = "failed"
)

// AlertService sends a monthly email when a user's spending on their
// default account crosses the alert threshold
type AlertService struct {
	budgetRepo  budget.BudgetRepository
	accountRepo account.AccountRepository
	txRepo      transaction.TransactionRepository
	userRepo    identity.UserRepository
	mailer      email.Mailer
	threshold   decimal.Decimal
	location    *time.Location
	metrics     *telemetry.FinanceMetrics
	logger      *zap.Logger
}

// AlertServiceConfig holds the alert tunables
type AlertServiceConfig struct {
	// Threshold is the usage percentage that triggers an alert; zero means 80
	Threshold decimal.Decimal
	// Location defines month boundaries; nil means UTC
	Location *time.Location
}

// NewAlertService creates a new AlertService
func NewAlertService(
	budgetRepo budget.BudgetRepository,
	accountRepo account.AccountRepository,
	txRepo transaction.TransactionRepository,
	userRepo identity.UserRepository,
	mailer email.Mailer,
	cfg AlertServiceConfig,
	logger *zap.Logger,
) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Threshold.IsPositive() {
		cfg.Threshold = budget.DefaultAlertThreshold
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &AlertService{
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		threshold:   cfg.Threshold,
		location:    cfg.Location,
		logger:      logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *AlertService) SetMetrics(metrics *telemetry.FinanceMetrics) {
	s.metrics = metrics
}

// CheckBudgetAlerts evaluates every budget at now. A failure on one budget
// is logged and counted, and the rest are still processed.
func (s *AlertService) CheckBudgetAlerts(ctx context.Context, now time.Time) (*AlertSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "check_alerts")
	defer span.End()

	budgets, err := s.budgetRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to load budgets", zap.String("op", "check_budget_alerts"), zap.Error(err))
		return nil, err
	}

	now = now.In(s.location)
	summary := &AlertSummary{}
	for _, b := range budgets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Checked++

		outcome, err := s.checkBudget(ctx, b, now)
		if err != nil {
			s.logger.Error("Budget alert failed",
				zap.String("op", "check_budget_alerts"),
				zap.String("budget_id", b.ID.String()),
				zap.String("user_id", b.UserID.String()),
				zap.Error(err),
			)
		}
		switch outcome {
		case AlertOutcomeSent:
			summary.Alerted++
		case AlertOutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		s.metrics.RecordBudgetAlert(ctx, outcome)
	}

	telemetry.SetAttributes(span,
		"budgets_checked", summary.Checked,
		"alerts_sent", summary.Alerted,
		"alerts_failed", summary.Failed,
	)
	telemetry.SetOK(span)
	return summary, nil
}

func (s *AlertService) checkBudget(ctx context.Context, b *budget.Budget, now time.Time) (string, error) {
	acc, err := s.accountRepo.FindDefaultForUser(ctx, b.UserID)
	if errors.Is(err, shared.ErrAccountNotFound) {
		return AlertOutcomeSkipped, nil
	}
	if err != nil {
		return AlertOutcomeFailed, err
	}

	from, to := budget.MonthRange(now)
	expenses, err := s.txRepo.SumExpenses(ctx, b.UserID, acc.ID, from, to)
	if err != nil {
		return AlertOutcomeFailed, err
	}
	if !b.ShouldAlert(expenses, now, s.threshold) {
		return AlertOutcomeSkipped, nil
	}

	user, err := s.userRepo.FindByID(ctx, b.UserID)
	if err != nil {
		return AlertOutcomeFailed, err
	}

	var categories []CategorySpend
	txs, err := s.txRepo.FindByAccount(ctx, b.UserID, acc.ID)
	if err != nil {
		s.logger.Warn("Category breakdown unavailable", zap.String("budget_id", b.ID.String()), zap.Error(err))
	} else {
		categories = topExpenseCategories(inRange(txs, from, to), maxAlertCategories)
	}

	html, err := RenderAlertEmail(AlertEmailData{
		UserName:      user.DisplayName(),
		AccountName:   acc.Name,
		Percentage:    b.PercentageUsed(expenses).StringFixed(1),
		Budget:        formatMoney(b.Amount),
		Spent:         formatMoney(expenses),
		Remaining:     formatMoney(b.Amount.Sub(expenses)),
		TopCategories: categories,
	})
	if err != nil {
		return AlertOutcomeFailed, err
	}

	result := s.mailer.Send(ctx, email.Email{
		To:      user.Email,
		Subject: AlertSubject(acc.Name),
		HTML:    html,
	})
	if !result.Success {
		// LastAlertSent stays unset so the next run retries
		return AlertOutcomeFailed, result.Err
	}

	if err := s.budgetRepo.UpdateLastAlertSent(ctx, b.ID, now); err != nil {
		return AlertOutcomeFailed, err
	}
	b.MarkAlertSent(now)

	s.logger.Info("Budget alert sent",
		zap.String("budget_id", b.ID.String()),
		zap.String("account_id", acc.ID.String()),
		zap.String("email_id", result.ID),
	)
	return AlertOutcomeSent, nil
}

func inRange(txs []*transaction.Transaction, from, to time.Time) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, t)
		}
	}
	return out
}
