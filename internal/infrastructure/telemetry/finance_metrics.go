package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
	OutcomeNotReceipt = "not_receipt"
)

// FinanceMetrics records the counters the finance services emit.
// All methods are safe on a nil receiver so services can run without metrics.
type FinanceMetrics struct {
	transactionsCreated *Counter
	transactionAmount   *Counter
	transactionsDeleted *Counter
	budgetAlerts        *Counter
	receiptScans        *Counter
	rateLimitDenied     *Counter
	recurringProcessed  *Counter
	jobDuration         *Histogram
}

// NewFinanceMetrics creates the finance instruments on meter.
func NewFinanceMetrics(meter metric.Meter) (*FinanceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	fm := &FinanceMetrics{}
	var err error

	if fm.transactionsCreated, err = NewCounter(meter,
		"welth_transactions_created_total", "Transactions created", "{transactions}"); err != nil {
		return nil, err
	}
	if fm.transactionAmount, err = NewCounter(meter,
		"welth_transaction_amount_total", "Transaction amount in cents", "{cents}"); err != nil {
		return nil, err
	}
	if fm.transactionsDeleted, err = NewCounter(meter,
		"welth_transactions_deleted_total", "Transactions deleted", "{transactions}"); err != nil {
		return nil, err
	}
	if fm.budgetAlerts, err = NewCounter(meter,
		"welth_budget_alerts_total", "Budget alert emails by outcome", "{alerts}"); err != nil {
		return nil, err
	}
	if fm.receiptScans, err = NewCounter(meter,
		"welth_receipt_scans_total", "Receipt scans by outcome", "{scans}"); err != nil {
		return nil, err
	}
	if fm.rateLimitDenied, err = NewCounter(meter,
		"welth_rate_limit_denied_total", "Requests denied by the transaction rate limiter", "{requests}"); err != nil {
		return nil, err
	}
	if fm.recurringProcessed, err = NewCounter(meter,
		"welth_recurring_transactions_processed_total", "Recurring occurrences materialised", "{transactions}"); err != nil {
		return nil, err
	}
	if fm.jobDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "welth_job_duration_seconds",
		Description: "Background job duration",
		Unit:        "s",
		Boundaries:  DurationBuckets,
	}); err != nil {
		return nil, err
	}

	return fm, nil
}

// RecordTransactionCreated counts a new transaction and its amount.
func (fm *FinanceMetrics) RecordTransactionCreated(ctx context.Context, txType string, amount decimal.Decimal) {
	if fm == nil {
		return
	}
	attr := AttrTransactionType.String(txType)
	fm.transactionsCreated.Inc(ctx, attr)
	fm.transactionAmount.Add(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart(), attr)
}

// RecordTransactionsDeleted counts deleted transactions.
func (fm *FinanceMetrics) RecordTransactionsDeleted(ctx context.Context, count int) {
	if fm == nil {
		return
	}
	fm.transactionsDeleted.Add(ctx, int64(count))
}

// RecordBudgetAlert counts a budget alert attempt by outcome.
func (fm *FinanceMetrics) RecordBudgetAlert(ctx context.Context, outcome string) {
	if fm == nil {
		return
	}
	fm.budgetAlerts.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordReceiptScan counts a receipt scan by outcome.
func (fm *FinanceMetrics) RecordReceiptScan(ctx context.Context, outcome string) {
	if fm == nil {
		return
	}
	fm.receiptScans.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordRateLimitDenied counts a request rejected by the rate limiter.
func (fm *FinanceMetrics) RecordRateLimitDenied(ctx context.Context) {
	if fm == nil {
		return
	}
	fm.rateLimitDenied.Inc(ctx)
}

// RecordRecurringProcessed counts materialised recurring occurrences.
func (fm *FinanceMetrics) RecordRecurringProcessed(ctx context.Context, count int) {
	if fm == nil {
		return
	}
	fm.recurringProcessed.Add(ctx, int64(count))
}

// RecordJobDuration records how long a background job ran.
func (fm *FinanceMetrics) RecordJobDuration(ctx context.Context, jobType string, d time.Duration, outcome string) {
	if fm == nil {
		return
	}
	fm.jobDuration.RecordDuration(ctx, d, AttrJobType.String(jobType), AttrOutcome.String(outcome))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewFinanceMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
