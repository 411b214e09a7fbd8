package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/budget"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"go.uber.org/zap"
)

// ViewInvalidationHandler drops a user's cached views whenever one of their
// accounts, transactions or budgets changes.
type ViewInvalidationHandler struct {
	cache  shared.ViewCache
	logger *zap.Logger
}

// NewViewInvalidationHandler creates the handler
func NewViewInvalidationHandler(cache shared.ViewCache, logger *zap.Logger) *ViewInvalidationHandler {
	return &ViewInvalidationHandler{cache: cache, logger: logger.Named("view_invalidation")}
}

// EventTypes returns the events that change cached views
func (h *ViewInvalidationHandler) EventTypes() []string {
	return []string{
		account.EventTypeAccountCreated,
		account.EventTypeDefaultAccountChanged,
		transaction.EventTypeTransactionCreated,
		transaction.EventTypeTransactionUpdated,
		transaction.EventTypeTransactionsDeleted,
		budget.EventTypeBudgetUpdated,
	}
}

// Handle invalidates the event owner's views
func (h *ViewInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	userID := event.UserID()
	if userID == uuid.Nil {
		return nil
	}

	if err := h.cache.Invalidate(ctx, userID); err != nil {
		return err
	}

	h.logger.Debug("invalidated cached views",
		zap.String("user_id", userID.String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

var _ shared.EventHandler = (*ViewInvalidationHandler)(nil)
