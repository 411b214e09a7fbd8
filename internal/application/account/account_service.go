package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AccountService manages a user's bank accounts.
// At most one account per user is default; the flag moves inside a single
// database transaction.
type AccountService struct {
	accountRepo    account.AccountRepository
	txRepo         transaction.TransactionRepository
	scope          TransactionScope
	viewCache      shared.ViewCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo account.AccountRepository,
	txRepo transaction.TransactionRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		scope:       scope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AccountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetViewCache sets the read cache for the account list
func (s *AccountService) SetViewCache(cache shared.ViewCache) {
	s.viewCache = cache
}

// CreateAccount creates an account. The user's first account is always
// default; a new default clears the previous one.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, userID.String())

	balance, err := account.ParseBalance(req.Balance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var acc *account.Account
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.AccountRepo()

		count, err := repo.CountForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count accounts: %w", err)
		}
		isDefault := req.IsDefault || count == 0

		if isDefault {
			if err := repo.ClearDefaultForUser(ctx, userID); err != nil {
				return fmt.Errorf("failed to clear default account: %w", err)
			}
		}

		acc, err = account.NewAccount(userID, req.Name, account.AccountType(req.Type), balance, isDefault)
		if err != nil {
			return err
		}
		return repo.Create(ctx, acc)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("create_account", userID, err)
	}

	s.publishEvents(ctx, acc)
	telemetry.SetAttributes(span, telemetry.SpanAttrAccountID, acc.ID.String())
	telemetry.SetOK(span)

	resp := ToAccountResponse(acc)
	return &resp, nil
}

// ListAccounts returns the user's accounts, newest first, with transaction counts
func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]AccountResponse, error) {
	var (
		cached  []AccountResponse
		version shared.ViewVersion
		cacheOK bool
	)
	if s.viewCache != nil {
		v, hit, err := s.viewCache.Get(ctx, userID, shared.ViewAccounts, &cached)
		switch {
		case err != nil:
			s.logger.Warn("View cache read failed", zap.String("view", shared.ViewAccounts), zap.Error(err))
		case hit:
			return cached, nil
		default:
			version, cacheOK = v, true
		}
	}

	accounts, err := s.accountRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, s.fail("list_accounts", userID, err)
	}
	resp := ToAccountResponses(accounts)

	if cacheOK {
		if err := s.viewCache.Set(ctx, userID, shared.ViewAccounts, version, resp); err != nil {
			s.logger.Warn("View cache write failed", zap.String("view", shared.ViewAccounts), zap.Error(err))
		}
	}
	return resp, nil
}

// SetDefaultAccount makes accountID the user's only default account.
// An account the user does not own rolls the whole change back.
func (s *AccountService) SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "set_default")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)

	var acc *account.Account
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.AccountRepo()
		if err := repo.ClearDefaultForUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear default account: %w", err)
		}
		if err := repo.SetDefault(ctx, userID, accountID); err != nil {
			return err
		}
		var err error
		acc, err = repo.FindByIDForUser(ctx, userID, accountID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("set_default_account", userID, err)
	}

	s.publish(ctx, account.NewDefaultAccountChangedEvent(acc))
	telemetry.SetOK(span)

	resp := ToAccountResponse(acc)
	return &resp, nil
}

// GetAccountWithTransactions returns an account with its transactions, newest date first
func (s *AccountService) GetAccountWithTransactions(ctx context.Context, userID, accountID uuid.UUID) (*AccountDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "get_with_transactions")
	defer span.End()

	acc, err := s.accountRepo.FindByIDForUser(ctx, userID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("get_account", userID, err)
	}
	if acc == nil {
		return nil, shared.ErrAccountNotFound
	}

	txs, err := s.txRepo.FindByAccount(ctx, userID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.fail("get_account", userID, err)
	}
	acc.TransactionCount = int64(len(txs))

	return &AccountDetailResponse{
		AccountResponse: ToAccountResponse(acc),
		Transactions:    apptxn.ToTransactionResponses(txs),
	}, nil
}

func (s *AccountService) publishEvents(ctx context.Context, acc *account.Account) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range acc.GetDomainEvents() {
		s.publish(ctx, event)
	}
	acc.ClearDomainEvents()
}

func (s *AccountService) publish(ctx context.Context, event shared.DomainEvent) {
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

func (s *AccountService) fail(op string, userID uuid.UUID, err error) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		s.logger.Error("Account operation failed",
			zap.String("op", op),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return err
}
