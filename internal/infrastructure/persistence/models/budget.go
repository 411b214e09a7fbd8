package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/budget"
)

// BudgetModel is the persistence model for the Budget aggregate.
// A user has at most one budget.
type BudgetModel struct {
	BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LastAlertSent *time.Time
}

// TableName returns the table name for GORM
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToDomain converts the persistence model to a domain Budget.
func (m *BudgetModel) ToDomain() *budget.Budget {
	return &budget.Budget{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		UserID:            m.UserID,
		Amount:            m.Amount,
		LastAlertSent:     m.LastAlertSent,
	}
}

// FromDomain populates the persistence model from a domain Budget.
func (m *BudgetModel) FromDomain(b *budget.Budget) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.UserID = b.UserID
	m.Amount = b.Amount
	m.LastAlertSent = b.LastAlertSent
}

// BudgetModelFromDomain creates a new persistence model from a domain Budget.
func BudgetModelFromDomain(b *budget.Budget) *BudgetModel {
	m := &BudgetModel{}
	m.FromDomain(b)
	return m
}

