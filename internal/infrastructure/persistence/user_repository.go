package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository stores users provisioned from identity-provider tokens
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user. A duplicate external_auth_id surfaces as the
// driver's unique violation; ResolveUser re-reads in that case.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
}

// Update saves profile changes, failing with ErrUserNotFound for unknown IDs
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	res := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user))
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return shared.ErrUserNotFound
	}
	return nil
}

// FindByID is used by the budget alert job to address its email
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByExternalAuthID looks a user up by the token's subject
func (r *GormUserRepository) FindByExternalAuthID(ctx context.Context, externalAuthID string) (*identity.User, error) {
	if externalAuthID == "" {
		return nil, shared.ErrUserNotFound
	}
	return r.findOne(ctx, "external_auth_id = ?", externalAuthID)
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
