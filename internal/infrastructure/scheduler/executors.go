package scheduler

import (
	"context"
	"fmt"
	"time"

	appbudget "github.com/welth/backend/internal/application/budget"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"go.uber.org/zap"
)

// BudgetAlertChecker runs one pass of budget alerts
type BudgetAlertChecker interface {
	CheckBudgetAlerts(ctx context.Context, now time.Time) (*appbudget.AlertSummary, error)
}

// RecurringProcessor materialises due recurring transactions
type RecurringProcessor interface {
	ProcessRecurringTransactions(ctx context.Context, now time.Time) (*apptxn.RecurringResult, error)
}

// BudgetAlertExecutor runs budget_alert jobs. A run with failed budgets
// returns an error so the scheduler retries; budgets already alerted this
// month are skipped on the retry.
type BudgetAlertExecutor struct {
	checker BudgetAlertChecker
	logger  *zap.Logger
}

// NewBudgetAlertExecutor creates a new budget alert executor
func NewBudgetAlertExecutor(checker BudgetAlertChecker, logger *zap.Logger) *BudgetAlertExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetAlertExecutor{checker: checker, logger: logger}
}

// Execute checks every budget at the job's scheduled time
func (e *BudgetAlertExecutor) Execute(ctx context.Context, job *Job) error {
	summary, err := e.checker.CheckBudgetAlerts(ctx, job.ScheduledFor)
	if err != nil {
		return err
	}

	e.logger.Info("Budget alert run finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("checked", summary.Checked),
		zap.Int("skipped", summary.Skipped),
		zap.Int("alerted", summary.Alerted),
		zap.Int("failed", summary.Failed),
	)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d budget alerts failed", summary.Failed, summary.Checked)
	}
	return nil
}

// RecurringTransactionsExecutor runs recurring_transactions jobs
type RecurringTransactionsExecutor struct {
	processor RecurringProcessor
	logger    *zap.Logger
}

// NewRecurringTransactionsExecutor creates a new recurring transactions executor
func NewRecurringTransactionsExecutor(processor RecurringProcessor, logger *zap.Logger) *RecurringTransactionsExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringTransactionsExecutor{processor: processor, logger: logger}
}

// Execute materialises occurrences due at the job's scheduled time
func (e *RecurringTransactionsExecutor) Execute(ctx context.Context, job *Job) error {
	result, err := e.processor.ProcessRecurringTransactions(ctx, job.ScheduledFor)
	if err != nil {
		return err
	}

	e.logger.Info("Recurring transactions run finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("templates", result.Templates),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d recurring templates failed", result.Failed, result.Templates)
	}
	return nil
}
