package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/budget"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBudgetRepository implements BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByUser returns the user's budget
func (r *GormBudgetRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*budget.Budget, error) {
	var model models.BudgetModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates the user's budget or updates its amount, keyed on user_id
func (r *GormBudgetRepository) Upsert(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*budget.Budget, error) {
	now := time.Now()
	model := &models.BudgetModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		Amount:    amount,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUser(ctx, userID)
}

// FindAll returns every budget
func (r *GormBudgetRepository) FindAll(ctx context.Context) ([]*budget.Budget, error) {
	var rows []models.BudgetModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*budget.Budget, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// UpdateLastAlertSent records when the last alert went out
func (r *GormBudgetRepository) UpdateLastAlertSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.BudgetModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_alert_sent": sentAt, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ budget.BudgetRepository = (*GormBudgetRepository)(nil)
