package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// recurringBatchSize bounds how many templates one run loads
	recurringBatchSize = 500
	// maxCatchUpOccurrences bounds how many missed occurrences one template materializes per run
	maxCatchUpOccurrences = 366
)

// TransactionService handles recording, editing and deleting transactions.
// Every change to a transaction moves the owning account's balance in the
// same database transaction.
type TransactionService struct {
	accountRepo    account.AccountRepository
	txRepo         transaction.TransactionRepository
	scope          TransactionScope
	limiter        RateLimiter
	viewCache      shared.ViewCache
	metrics        *telemetry.FinanceMetrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	accountRepo account.AccountRepository,
	txRepo transaction.TransactionRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		scope:       scope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRateLimiter enables per-user rate limiting of CreateTransaction
func (s *TransactionService) SetRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}

// SetViewCache sets the read cache for the dashboard transaction list
func (s *TransactionService) SetViewCache(cache shared.ViewCache) {
	s.viewCache = cache
}

// SetMetrics sets the finance metrics recorder
func (s *TransactionService) SetMetrics(metrics *telemetry.FinanceMetrics) {
	s.metrics = metrics
}

// CreateTransaction records a transaction and applies its balance change
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrAccountID, req.AccountID.String(),
		telemetry.SpanAttrTransactionType, req.Type,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := s.consumeToken(ctx, userID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	acc, err := s.accountRepo.FindByIDForUser(ctx, userID, req.AccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("create_transaction", userID, err)
	}

	txn, err := transaction.NewTransaction(userID, req.details())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.TransactionRepo().Create(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return repos.AccountRepo().IncrementBalance(ctx, acc.ID, txn.BalanceChange())
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("create_transaction", userID, err)
	}

	s.publishEvents(ctx, txn)
	s.metrics.RecordTransactionCreated(ctx, txn.Type.String(), txn.Amount)
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, txn.ID.String())
	telemetry.SetOK(span)

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

func (s *TransactionService) consumeToken(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	decision := s.limiter.Decide(userID.String())
	if decision.Allowed {
		return nil
	}

	s.logger.Warn("RATE_LIMIT_EXCEEDED",
		zap.String("user_id", userID.String()),
		zap.Int("remaining", decision.Remaining),
		zap.Int64("reset_seconds", int64(decision.ResetIn.Round(time.Second)/time.Second)),
	)
	s.metrics.RecordRateLimitDenied(ctx)
	return &RateLimitError{Decision: decision}
}

// GetTransaction returns one of the user's transactions
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.txRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, shared.ErrTransactionNotFound
	}
	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// UpdateTransaction edits a transaction in place and moves the affected
// account balances by the net difference.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "update")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrTransactionID, id.String(),
	)

	txn, err := s.txRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("update_transaction", userID, err)
	}
	if txn == nil {
		return nil, shared.ErrTransactionNotFound
	}

	if req.AccountID != txn.AccountID {
		if _, err := s.accountRepo.FindByIDForUser(ctx, userID, req.AccountID); err != nil {
			telemetry.RecordError(span, err)
			return nil, s.fail("update_transaction", userID, err)
		}
	}

	adjustments, err := txn.Revise(req.details())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.TransactionRepo().Update(ctx, txn); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return applyAdjustments(ctx, repos.AccountRepo(), adjustments)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("update_transaction", userID, err)
	}

	s.publishEvents(ctx, txn)
	telemetry.SetOK(span)

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// BulkDeleteTransactions deletes the user's transactions among ids and
// reverts their effect on every affected account.
func (s *TransactionService) BulkDeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*BulkDeleteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "bulk_delete")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrTransactionCount, len(ids),
	)

	txs, err := s.txRepo.FindByIDsForUser(ctx, userID, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("bulk_delete_transactions", userID, err)
	}
	if len(txs) == 0 {
		telemetry.RecordError(span, shared.ErrNoTransactionsFound)
		return nil, shared.ErrNoTransactionsFound
	}

	found := make([]uuid.UUID, len(txs))
	for i, t := range txs {
		found[i] = t.ID
	}
	reversals := transaction.ReversalsFor(txs).NonZero()

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.TransactionRepo().DeleteByIDsForUser(ctx, userID, found); err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
		return applyAdjustments(ctx, repos.AccountRepo(), reversals)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("bulk_delete_transactions", userID, err)
	}

	event := transaction.NewTransactionsDeletedEvent(userID, txs)
	s.publish(ctx, event)
	s.metrics.RecordTransactionsDeleted(ctx, len(txs))
	telemetry.SetOK(span)

	return &BulkDeleteResult{
		Deleted:    len(txs),
		AccountIDs: event.AccountIDs,
	}, nil
}

// ListDashboardTransactions returns all of the user's transactions, newest first
func (s *TransactionService) ListDashboardTransactions(ctx context.Context, userID uuid.UUID) ([]TransactionResponse, error) {
	var (
		cached  []TransactionResponse
		version shared.ViewVersion
		cacheOK bool
	)
	if s.viewCache != nil {
		v, hit, err := s.viewCache.Get(ctx, userID, shared.ViewTransactions, &cached)
		switch {
		case err != nil:
			s.logger.Warn("View cache read failed", zap.String("view", shared.ViewTransactions), zap.Error(err))
		case hit:
			return cached, nil
		default:
			version, cacheOK = v, true
		}
	}

	txs, err := s.txRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, s.fail("list_dashboard_transactions", userID, err)
	}
	resp := ToTransactionResponses(txs)

	if cacheOK {
		if err := s.viewCache.Set(ctx, userID, shared.ViewTransactions, version, resp); err != nil {
			s.logger.Warn("View cache write failed", zap.String("view", shared.ViewTransactions), zap.Error(err))
		}
	}
	return resp, nil
}

// ProcessRecurringTransactions materializes every due occurrence of the
// recurring templates. Each template is processed in its own database
// transaction; one failing template does not stop the others.
func (s *TransactionService) ProcessRecurringTransactions(ctx context.Context, now time.Time) (*RecurringResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "process_recurring")
	defer span.End()

	templates, err := s.txRepo.FindDueRecurring(ctx, now, recurringBatchSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load due recurring transactions: %w", err)
	}

	result := &RecurringResult{Templates: len(templates)}
	for _, template := range templates {
		created, err := s.processTemplate(ctx, template, now)
		if err != nil {
			result.Failed++
			s.logger.Error("Failed to process recurring transaction",
				zap.String("op", "process_recurring_transaction"),
				zap.String("transaction_id", template.ID.String()),
				zap.String("user_id", template.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Created += created
	}

	s.metrics.RecordRecurringProcessed(ctx, result.Created)
	telemetry.SetAttributes(span,
		"templates", result.Templates,
		"created", result.Created,
		"failed", result.Failed,
	)
	if result.Failed > 0 {
		telemetry.RecordError(span, fmt.Errorf("%d recurring templates failed", result.Failed))
	} else {
		telemetry.SetOK(span)
	}
	return result, nil
}

func (s *TransactionService) processTemplate(ctx context.Context, template *transaction.Transaction, now time.Time) (int, error) {
	var occurrences []*transaction.Transaction
	for template.IsDue(now) && len(occurrences) < maxCatchUpOccurrences {
		occurrence, err := template.SpawnOccurrence(now)
		if err != nil {
			return 0, err
		}
		occurrences = append(occurrences, occurrence)
	}
	if len(occurrences) == 0 {
		return 0, nil
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, occurrence := range occurrences {
			if err := repos.TransactionRepo().Create(ctx, occurrence); err != nil {
				return fmt.Errorf("failed to save occurrence: %w", err)
			}
			if err := repos.AccountRepo().IncrementBalance(ctx, occurrence.AccountID, occurrence.BalanceChange()); err != nil {
				return err
			}
		}
		return repos.TransactionRepo().Update(ctx, template)
	})
	if err != nil {
		return 0, err
	}

	for _, occurrence := range occurrences {
		s.publishEvents(ctx, occurrence)
		s.metrics.RecordTransactionCreated(ctx, occurrence.Type.String(), occurrence.Amount)
	}
	return len(occurrences), nil
}

func applyAdjustments(ctx context.Context, repo account.AccountRepository, adjustments transaction.BalanceAdjustments) error {
	for accountID, delta := range adjustments {
		if err := repo.IncrementBalance(ctx, accountID, delta); err != nil {
			return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
		}
	}
	return nil
}

func (s *TransactionService) publishEvents(ctx context.Context, txn *transaction.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range txn.GetDomainEvents() {
		s.publish(ctx, event)
	}
	txn.ClearDomainEvents()
}

func (s *TransactionService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// fail logs unexpected errors under op and returns err unchanged.
// Domain errors are expected outcomes and are not logged.
func (s *TransactionService) fail(op string, userID uuid.UUID, err error) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		s.logger.Error("Transaction operation failed",
			zap.String("op", op),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return err
}
