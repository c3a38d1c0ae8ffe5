package signup

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/gateway/geo"
	"github.com/devconnect/devconnect/repository"
)

// ProfileSource resolves a public profile for a login. A failed or
// malformed lookup is domain.ErrInvalidUsername.
type ProfileSource interface {
	Lookup(ctx context.Context, login string) (*domain.UserRecord, error)
}

// Registry is the slice of the registry client the flow needs.
type Registry interface {
	GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error)
	Create(ctx context.Context, record *domain.UserRecord) error
}

type UseCase struct {
	profiles ProfileSource
	registry Registry
	sessions repository.SessionStore
	locator  geo.Locator
	logger   *zap.Logger
}

func New(profiles ProfileSource, registry Registry, sessions repository.SessionStore, locator geo.Locator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles: profiles,
		registry: registry,
		sessions: sessions,
		locator:  locator,
		logger:   logger,
	}
}

// Register runs the registration flow end to end. Steps are strictly
// sequential: validate the username, check for an existing record,
// capture a coordinate, create the record, and persist the session flag
// last so the device never believes it is registered before the registry
// accepted the record.
func (uc *UseCase) Register(ctx context.Context, raw string) (*domain.UserRecord, error) {
	login := strings.TrimSpace(raw)
	if login == "" {
		return nil, domain.ErrInvalidUsername
	}

	profile, err := uc.profiles.Lookup(ctx, login)
	if err != nil {
		return nil, domain.ErrInvalidUsername
	}

	existing, err := uc.registry.GetByLogin(ctx, profile.Login)
	if err == nil {
		// Returning user: no duplicate record, no location re-capture.
		if err := uc.saveSession(ctx, existing.Login); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	coordinate, err := uc.locator.Locate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLocationDenied) {
			uc.logger.Info("registration aborted, location denied", zap.String("login", profile.Login))
			return nil, domain.ErrLocationDenied
		}
		return nil, err
	}

	record := &domain.UserRecord{
		Login:     profile.Login,
		Name:      profile.DisplayName(),
		AvatarURL: profile.AvatarURL,
		Bio:       profile.Bio,
		Location:  &coordinate,
	}
	if err := uc.registry.Create(ctx, record); err != nil {
		uc.logger.Error("registry create failed", zap.String("login", record.Login), zap.Error(err))
		return nil, err
	}

	if err := uc.saveSession(ctx, record.Login); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered",
		zap.String("login", record.Login),
		zap.Float64("latitude", coordinate.Latitude),
		zap.Float64("longitude", coordinate.Longitude))
	return record, nil
}

func (uc *UseCase) saveSession(ctx context.Context, login string) error {
	return uc.sessions.Save(ctx, &domain.Session{Login: login})
}
