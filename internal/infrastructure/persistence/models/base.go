package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/shared"
)

// BaseModel is the id/created_at/updated_at triple every table starts with
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// UserOwnedModel adds the owning user. Every repository query on an owned
// table filters on user_id.
type UserOwnedModel struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// aggregateRoot rebuilds a loaded row's identity with an empty event list
func aggregateRoot(m BaseModel) shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.ToDomain()}
}

// AllModels lists the tables parents first, for AutoMigrate in tests
func AllModels() []any {
	return []any{&UserModel{}, &AccountModel{}, &TransactionModel{}, &BudgetModel{}}
}
