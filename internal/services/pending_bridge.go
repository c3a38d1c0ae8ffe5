package services

import (
	"context"
	"encoding/json"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/internal/infrastructure/buffer"
	"github.com/devconnect/devconnect/usecase"
)

// PendingBridge adapts the processor to the use-case buffer port.
type PendingBridge struct {
	processor *PendingProcessor
}

func NewPendingBridge(processor *PendingProcessor) *PendingBridge {
	return &PendingBridge{processor: processor}
}

func (b *PendingBridge) BufferUserCreate(ctx context.Context, record *domain.UserRecord) error {
	if b.processor == nil || record == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return b.processor.Buffer(ctx, buffer.Item{
		Login: record.Login,
		Data:  payload,
	})
}

var _ usecase.OperationBuffer = (*PendingBridge)(nil)
