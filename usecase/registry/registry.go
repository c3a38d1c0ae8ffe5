package registry

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
	"github.com/devconnect/devconnect/usecase"
)

// UseCase is the registry service's business layer: roster reads and
// create-once user registration.
type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.UserRecord, error) {
	return uc.users.List(ctx)
}

func (uc *UseCase) FindByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	if strings.TrimSpace(login) == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.users.GetByLogin(ctx, login)
}

// Create stores a new record. A duplicate login is rejected; any other
// storage failure falls back to the offline buffer so a registration is
// not lost while Postgres is unavailable.
func (uc *UseCase) Create(ctx context.Context, record *domain.UserRecord) (*domain.UserRecord, error) {
	if record == nil || strings.TrimSpace(record.Login) == "" {
		return nil, domain.ErrInvalidPayload
	}
	record.Login = strings.TrimSpace(record.Login)
	if record.Name == "" {
		record.Name = record.Login
	}

	err := uc.users.Create(ctx, record)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, domain.ErrUserExists) {
		return nil, domain.ErrUserExists
	}

	if uc.buffer != nil {
		if bufErr := uc.buffer.BufferUserCreate(ctx, record); bufErr != nil {
			uc.logger.Error("failed to buffer user create", zap.Error(bufErr))
			return nil, err
		}
		uc.logger.Warn("user create buffered due to repository error",
			zap.String("login", record.Login), zap.Error(err))
		return record, nil
	}
	return nil, err
}
