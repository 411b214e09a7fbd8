package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/account"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create creates a new account
func (r *GormAccountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.db.WithContext(ctx).Create(models.AccountModelFromDomain(a)).Error
}

// FindByIDForUser finds an account owned by the user, with its transaction count
func (r *GormAccountRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}

	acc := model.ToDomain()
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("account_id = ?", id).
		Count(&acc.TransactionCount).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

type accountTransactionCount struct {
	AccountID uuid.UUID
	Count     int64
}

// FindAllForUser returns the user's accounts, newest first, with transaction counts
func (r *GormAccountRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*account.Account{}, nil
	}

	var counts []accountTransactionCount
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("account_id, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("account_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byAccount := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byAccount[c.AccountID] = c.Count
	}

	accounts := make([]*account.Account, len(rows))
	for i := range rows {
		accounts[i] = rows[i].ToDomain()
		accounts[i].TransactionCount = byAccount[rows[i].ID]
	}
	return accounts, nil
}

// FindDefaultForUser returns the user's default account
func (r *GormAccountRepository) FindDefaultForUser(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountForUser counts the user's accounts
func (r *GormAccountRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ClearDefaultForUser unsets the default flag on every account of the user
func (r *GormAccountRepository) ClearDefaultForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Updates(map[string]any{"is_default": false, "updated_at": time.Now()}).Error
}

// SetDefault marks one of the user's accounts as default.
// An account the user does not own yields ErrAccountNotFound.
func (r *GormAccountRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_default": true, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// IncrementBalance atomically adds delta to the account balance
func (r *GormAccountRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

var _ account.AccountRepository = (*GormAccountRepository)(nil)
