package repository

import (
	"context"

	"github.com/devconnect/devconnect/domain"
)

// SessionStore persists the device-local session flag. Current returns
// domain.ErrSessionNotFound when the device is unregistered. Clear is
// idempotent.
type SessionStore interface {
	Current(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
