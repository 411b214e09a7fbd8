package models

import (
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/account"
)

// AccountModel is the persistence model for the Account aggregate.
type AccountModel struct {
	UserOwnedModel
	Name      string              `gorm:"type:varchar(100);not null"`
	Type      account.AccountType `gorm:"type:varchar(20);not null"`
	Balance   decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	IsDefault bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		UserID:            m.UserID,
		Name:              m.Name,
		Type:              m.Type,
		Balance:           m.Balance,
		IsDefault:         m.IsDefault,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.Name = a.Name
	m.Type = a.Type
	m.Balance = a.Balance
	m.IsDefault = a.IsDefault
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}
