package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/domain/transaction"
	"github.com/welth/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create creates a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(t)).Error
}

// Update saves an existing transaction in place
func (r *GormTransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	model := models.TransactionModelFromDomain(t)
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrTransactionNotFound
	}
	return nil
}

// FindByIDForUser finds a transaction owned by the user
func (r *GormTransactionRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrTransactionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForUser returns the user's transactions among ids
func (r *GormTransactionRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*transaction.Transaction, error) {
	if len(ids) == 0 {
		return []*transaction.Transaction{}, nil
	}
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

// DeleteByIDsForUser deletes the user's transactions among ids
func (r *GormTransactionRepository) DeleteByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.TransactionModel{})
	return result.RowsAffected, result.Error
}

// FindAllForUser returns all of the user's transactions, newest date first
func (r *GormTransactionRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

// FindByAccount returns the transactions of one account, newest date first
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

// SumExpenses sums EXPENSE amounts on an account with from <= date <= to
func (r *GormTransactionRepository) SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("SUM(amount)").
		Where("user_id = ? AND account_id = ? AND type = ?", userID, accountID, transaction.TransactionTypeExpense).
		Where("date >= ? AND date <= ?", from, to).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// FindDueRecurring returns completed recurring templates whose next occurrence is at or before now
func (r *GormTransactionRepository) FindDueRecurring(ctx context.Context, now time.Time, limit int) ([]*transaction.Transaction, error) {
	var rows []models.TransactionModel
	query := r.db.WithContext(ctx).
		Where("is_recurring = ? AND status = ?", true, transaction.TransactionStatusCompleted).
		Where("next_recurring_date IS NOT NULL AND next_recurring_date <= ?", now).
		Order("next_recurring_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

func toDomainTransactions(rows []models.TransactionModel) []*transaction.Transaction {
	result := make([]*transaction.Transaction, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result
}

var _ transaction.TransactionRepository = (*GormTransactionRepository)(nil)
