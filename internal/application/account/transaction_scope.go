package account

import (
	"context"

	"github.com/welth/backend/internal/domain/account"
)

// TransactionScope provides transactional access to account repositories.
// All repository calls made inside Execute commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories that share a transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the account repository scoped to the current transaction
	AccountRepo() account.AccountRepository
}

// NoOpTransactionScope runs fn without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	accountRepo account.AccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(accountRepo account.AccountRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{accountRepo: accountRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository
func (s *NoOpTransactionScope) AccountRepo() account.AccountRepository {
	return s.accountRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
