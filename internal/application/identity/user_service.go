package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/welth/backend/internal/domain/identity"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// UserService maps identity-provider subjects to local users
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ResolveUser returns the local user for externalID, provisioning one from
// the token profile on first sight. A profile without an email cannot be
// provisioned and yields ErrUserNotFound.
func (s *UserService) ResolveUser(ctx context.Context, externalID string, profile identity.Profile) (*identity.User, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "identity", "resolve_user")
	defer span.End()

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		telemetry.RecordError(span, shared.ErrUnauthorized)
		return nil, shared.ErrUnauthorized
	}

	user, err := s.userRepo.FindByExternalAuthID(ctx, externalID)
	if err == nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrUserID, user.ID.String())
		telemetry.SetOK(span)
		return user, nil
	}
	if !errors.Is(err, shared.ErrUserNotFound) {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to look up user", zap.String("op", "resolve_user"), zap.Error(err))
		return nil, err
	}

	if strings.TrimSpace(profile.Email) == "" {
		telemetry.RecordError(span, shared.ErrUserNotFound)
		return nil, shared.ErrUserNotFound
	}

	user, err = identity.NewUser(externalID, profile)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent request may have provisioned the same subject
		existing, findErr := s.userRepo.FindByExternalAuthID(ctx, externalID)
		if findErr == nil {
			telemetry.SetOK(span)
			return existing, nil
		}
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to provision user", zap.String("op", "resolve_user"), zap.Error(err))
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
			s.logger.Error("Failed to publish domain events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()

	s.logger.Info("User provisioned", zap.String("user_id", user.ID.String()))
	telemetry.SetAttributes(span, telemetry.SpanAttrUserID, user.ID.String())
	telemetry.SetOK(span)
	return user, nil
}
