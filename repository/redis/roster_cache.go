package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
)

type rosterCache struct {
	inner  repository.UserRepository
	client *redislib.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRosterCache decorates a user repository with a Redis read cache for
// the full roster. Postgres remains the single source of truth: cache
// failures fall back to the inner repository and a create invalidates
// the cached list.
func NewRosterCache(inner repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rosterCache{
		inner:  inner,
		client: client,
		key:    "roster:all",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *rosterCache) List(ctx context.Context) ([]domain.UserRecord, error) {
	if cached, err := c.client.Get(ctx, c.key).Result(); err == nil {
		var records []domain.UserRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
		// A corrupt entry is dropped and reloaded from the source.
		_ = c.client.Del(ctx, c.key).Err()
	} else if err != redislib.Nil {
		c.logger.Warn("roster cache read failed", zap.Error(err))
	}

	records, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("roster cache write failed", zap.Error(err))
		}
	}
	return records, nil
}

// GetByLogin bypasses the cache; single-row lookups stay on Postgres.
func (c *rosterCache) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	return c.inner.GetByLogin(ctx, login)
}

func (c *rosterCache) Create(ctx context.Context, record *domain.UserRecord) error {
	if err := c.inner.Create(ctx, record); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("roster cache invalidation failed", zap.Error(err))
	}
	return nil
}
