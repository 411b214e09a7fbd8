package transaction

import (
	"context"

	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/transaction"
)

// TransactionScope provides transactional access to the repositories a
// money movement touches. A transaction row and its balance increments
// commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories that share a transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the account repository scoped to the current transaction
	AccountRepo() account.AccountRepository
	// TransactionRepo returns the transaction repository scoped to the current transaction
	TransactionRepo() transaction.TransactionRepository
}

// NoOpTransactionScope runs fn without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	accountRepo     account.AccountRepository
	transactionRepo transaction.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	accountRepo account.AccountRepository,
	transactionRepo transaction.TransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository.
func (s *NoOpTransactionScope) AccountRepo() account.AccountRepository {
	return s.accountRepo
}

// TransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() transaction.TransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
