package repository

import (
	"context"

	"github.com/devconnect/devconnect/domain"
)

// UserRepository stores the roster. Records are created once and never
// updated; Create returns domain.ErrUserExists on a duplicate login.
type UserRepository interface {
	GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error)
	List(ctx context.Context) ([]domain.UserRecord, error)
	Create(ctx context.Context, record *domain.UserRecord) error
}
