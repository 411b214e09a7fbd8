package models

import (
	"github.com/welth/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	ExternalAuthID string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name           string `gorm:"type:varchar(200)"`
	ImageURL       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		ExternalAuthID:    m.ExternalAuthID,
		Email:             m.Email,
		Name:              m.Name,
		ImageURL:          m.ImageURL,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.ExternalAuthID = u.ExternalAuthID
	m.Email = u.Email
	m.Name = u.Name
	m.ImageURL = u.ImageURL
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
