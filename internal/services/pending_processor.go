package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/internal/infrastructure/buffer"
	"github.com/devconnect/devconnect/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently pending registrations drain.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// PendingProcessor replays buffered registrations once Postgres is back.
type PendingProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	users   repository.UserRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewPendingProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	users repository.UserRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *PendingProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	} else if cfg.Interval < time.Second {
		// The @every schedule has second resolution; anything shorter
		// would render as "@every 0s" and never fire.
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &PendingProcessor{
		store:   store,
		monitor: monitor,
		users:   users,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := p.Drain(ctx); err != nil {
			p.logger.Error("pending drain failed", zap.Error(err))
		}
	})

	return p
}

// Start launches the cron scheduler.
func (p *PendingProcessor) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("pending processor started")
}

// Stop gracefully stops the scheduler.
func (p *PendingProcessor) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("pending processor stopped")
}

// Drain replays pending registrations synchronously. One failed item
// never aborts the batch.
func (p *PendingProcessor) Drain(ctx context.Context) error {
	if p == nil || p.store == nil {
		return nil
	}
	if p.monitor != nil && !p.monitor.IsOnline() {
		p.logger.Debug("skipping pending drain (offline)")
		return nil
	}

	items, err := p.store.GetBatch(p.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := p.replay(ctx, item)
		if err == nil || errors.Is(err, domain.ErrUserExists) {
			// A duplicate means the record already landed; drop it.
			if err := p.store.Remove(item); err != nil {
				p.logger.Warn("failed to purge pending item", zap.Error(err))
			}
			continue
		}

		p.logger.Error("failed to replay pending registration",
			zap.String("item_id", item.ID),
			zap.String("login", item.Login),
			zap.Error(err))

		item.Retries++
		if item.Retries >= p.cfg.MaxRetries {
			p.logger.Warn("dropping pending item (max retries reached)", zap.String("item_id", item.ID))
			_ = p.store.Remove(item)
			continue
		}
		if err := p.store.Requeue(item); err != nil {
			p.logger.Error("failed to requeue pending item", zap.Error(err))
		}
	}
	return nil
}

// Buffer attempts the create immediately and falls back to persisting it.
func (p *PendingProcessor) Buffer(ctx context.Context, item buffer.Item) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("pending processor not configured")
	}

	if p.monitor == nil || p.monitor.IsOnline() {
		if err := p.replay(ctx, item); err == nil {
			return nil
		} else if errors.Is(err, domain.ErrUserExists) {
			return err
		} else {
			p.logger.Warn("immediate create failed, buffering", zap.Error(err))
		}
	}
	return p.store.Enqueue(item)
}

// Size returns the number of pending registrations.
func (p *PendingProcessor) Size() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (p *PendingProcessor) replay(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var record domain.UserRecord
	if err := json.Unmarshal(item.Data, &record); err != nil {
		return err
	}
	return p.users.Create(ctx, &record)
}
