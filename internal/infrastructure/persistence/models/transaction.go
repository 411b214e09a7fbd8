package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/transaction"
)

// TransactionModel is the persistence model for the Transaction aggregate.
type TransactionModel struct {
	UserOwnedModel
	AccountID         uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Type              transaction.TransactionType   `gorm:"type:varchar(20);not null"`
	Amount            decimal.Decimal               `gorm:"type:decimal(18,2);not null"`
	Description       string                        `gorm:"type:text"`
	Date              time.Time                     `gorm:"not null;index"`
	Category          string                        `gorm:"type:varchar(50);not null"`
	ReceiptURL        string                        `gorm:"type:text"`
	IsRecurring       bool                          `gorm:"not null;default:false"`
	RecurringInterval *string                       `gorm:"type:varchar(20)"` // NULL unless recurring
	NextRecurringDate *time.Time                    `gorm:"index"`
	LastProcessed     *time.Time
	Status            transaction.TransactionStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *transaction.Transaction {
	return &transaction.Transaction{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		UserID:            m.UserID,
		AccountID:         m.AccountID,
		Type:              m.Type,
		Amount:            m.Amount,
		Description:       m.Description,
		Date:              m.Date,
		Category:          m.Category,
		ReceiptURL:        m.ReceiptURL,
		IsRecurring:       m.IsRecurring,
		RecurringInterval: transaction.RecurringInterval(ptrValue(m.RecurringInterval)),
		NextRecurringDate: m.NextRecurringDate,
		LastProcessed:     m.LastProcessed,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *transaction.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.UserID = t.UserID
	m.AccountID = t.AccountID
	m.Type = t.Type
	m.Amount = t.Amount
	m.Description = t.Description
	m.Date = t.Date
	m.Category = t.Category
	m.ReceiptURL = t.ReceiptURL
	m.IsRecurring = t.IsRecurring
	m.RecurringInterval = nullableString(string(t.RecurringInterval))
	m.NextRecurringDate = t.NextRecurringDate
	m.LastProcessed = t.LastProcessed
	m.Status = t.Status
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *transaction.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
