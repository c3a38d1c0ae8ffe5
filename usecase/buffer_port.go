package usecase

import (
	"context"

	"github.com/devconnect/devconnect/domain"
)

// OperationBuffer abstracts the offline write buffer so use cases stay
// storage-agnostic.
type OperationBuffer interface {
	BufferUserCreate(ctx context.Context, record *domain.UserRecord) error
}
