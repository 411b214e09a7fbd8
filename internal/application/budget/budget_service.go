package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/budget"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BudgetService reads and sets a user's monthly budget
type BudgetService struct {
	budgetRepo     budget.BudgetRepository
	txRepo         transaction.TransactionRepository
	location       *time.Location
	now            func() time.Time
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBudgetService creates a new BudgetService. Month boundaries are
// computed in loc; nil means UTC.
func NewBudgetService(
	budgetRepo budget.BudgetRepository,
	txRepo transaction.TransactionRepository,
	loc *time.Location,
	logger *zap.Logger,
) *BudgetService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{
		budgetRepo: budgetRepo,
		txRepo:     txRepo,
		location:   loc,
		now:        time.Now,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BudgetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetCurrentBudget returns the user's budget and this month's expenses on accountID
func (s *BudgetService) GetCurrentBudget(ctx context.Context, userID, accountID uuid.UUID) (*CurrentBudgetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "get_current")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)

	resp := &CurrentBudgetResponse{CurrentExpenses: decimal.Zero}

	b, err := s.budgetRepo.FindByUser(ctx, userID)
	switch {
	case err == nil:
		resp.Budget = ToBudgetResponse(b)
	case errors.Is(err, shared.ErrNotFound):
	default:
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to load budget", zap.String("op", "get_budget"), zap.Error(err))
		return nil, err
	}

	from, to := budget.MonthRange(s.now().In(s.location))
	expenses, err := s.txRepo.SumExpenses(ctx, userID, accountID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to sum expenses", zap.String("op", "get_budget"), zap.Error(err))
		return nil, err
	}
	resp.CurrentExpenses = expenses

	return resp, nil
}

// UpdateBudget creates or updates the user's budget amount
func (s *BudgetService) UpdateBudget(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*BudgetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "update")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	if !amount.IsPositive() {
		telemetry.RecordError(span, shared.ErrInvalidAmount)
		return nil, shared.ErrInvalidAmount
	}

	b, err := s.budgetRepo.Upsert(ctx, userID, amount)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to update budget", zap.String("op", "update_budget"), zap.Error(err))
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, budget.NewBudgetUpdatedEvent(b)); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event_type", budget.EventTypeBudgetUpdated),
				zap.Error(err),
			)
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBudgetID, b.ID.String())
	telemetry.SetOK(span)
	return ToBudgetResponse(b), nil
}
