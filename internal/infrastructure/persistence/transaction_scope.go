package persistence

import (
	"context"

	appaccount "github.com/welth/backend/internal/application/account"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/transaction"
	"gorm.io/gorm"
)

// GormAccountScope implements the account TransactionScope using GORM transactions.
type GormAccountScope struct {
	db *gorm.DB
}

// NewGormAccountScope creates a new GormAccountScope.
func NewGormAccountScope(db *gorm.DB) *GormAccountScope {
	return &GormAccountScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormAccountScope) Execute(ctx context.Context, fn func(repos appaccount.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTransactionScope implements the transaction TransactionScope using GORM transactions.
// A transaction row and the balance increments it causes commit together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptxn.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// AccountRepo returns the account repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AccountRepo() account.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// TransactionRepo returns the transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() transaction.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

var (
	_ appaccount.TransactionScope          = (*GormAccountScope)(nil)
	_ appaccount.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apptxn.TransactionScope              = (*GormTransactionScope)(nil)
	_ apptxn.TransactionalRepositories     = (*gormTransactionalRepositories)(nil)
)
