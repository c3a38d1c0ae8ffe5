package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/internal/infrastructure/buffer"
	"github.com/devconnect/devconnect/repository"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	args := m.Called(ctx, login)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context) ([]domain.UserRecord, error) {
	args := m.Called(ctx)
	if recs := args.Get(0); recs != nil {
		return recs.([]domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, record *domain.UserRecord) error {
	return m.Called(ctx, record).Error(0)
}

type healthStub struct{ online bool }

func (h healthStub) IsOnline() bool { return h.online }

func newProcessor(t *testing.T, users repository.UserRepository, online bool, cfg ProcessorConfig) (*PendingProcessor, *buffer.Store) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "pending.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewPendingProcessor(store, healthStub{online: online}, users, nil, cfg), store
}

func enqueueRegistration(t *testing.T, store *buffer.Store, login string) {
	t.Helper()
	payload, err := json.Marshal(domain.UserRecord{Login: login})
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(buffer.Item{Login: login, Data: payload}))
}

func buffered(t *testing.T, store *buffer.Store) []buffer.Item {
	t.Helper()
	items, err := store.GetBatch(50)
	require.NoError(t, err)
	return items
}

func matchLogin(login string) interface{} {
	return mock.MatchedBy(func(rec *domain.UserRecord) bool {
		return rec.Login == login
	})
}

func TestDrain_FailureDoesNotAbortBatch(t *testing.T) {
	users := new(userRepoMock)
	users.On("Create", mock.Anything, matchLogin("alice")).Return(errors.New("connection refused"))
	users.On("Create", mock.Anything, matchLogin("bob")).Return(nil)
	users.On("Create", mock.Anything, matchLogin("carol")).Return(domain.ErrUserExists)

	p, store := newProcessor(t, users, true, ProcessorConfig{})
	enqueueRegistration(t, store, "alice")
	enqueueRegistration(t, store, "bob")
	enqueueRegistration(t, store, "carol")

	require.NoError(t, p.Drain(context.Background()))

	// bob landed and carol was already there; only alice stays behind,
	// requeued with a bumped retry count.
	items := buffered(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].Login)
	assert.Equal(t, 1, items[0].Retries)
	users.AssertExpectations(t)
}

func TestDrain_DropsAtMaxRetries(t *testing.T) {
	users := new(userRepoMock)
	users.On("Create", mock.Anything, matchLogin("alice")).Return(errors.New("connection refused"))

	p, store := newProcessor(t, users, true, ProcessorConfig{MaxRetries: 2})
	enqueueRegistration(t, store, "alice")

	require.NoError(t, p.Drain(context.Background()))
	items := buffered(t, store)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)

	require.NoError(t, p.Drain(context.Background()))
	assert.Empty(t, buffered(t, store))
	assert.Zero(t, p.Size())
}

func TestDrain_SkipsWhileOffline(t *testing.T) {
	users := new(userRepoMock)

	p, store := newProcessor(t, users, false, ProcessorConfig{})
	enqueueRegistration(t, store, "alice")

	require.NoError(t, p.Drain(context.Background()))
	assert.Equal(t, 1, p.Size())
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNewPendingProcessor_IntervalClamped(t *testing.T) {
	p, _ := newProcessor(t, new(userRepoMock), true, ProcessorConfig{Interval: 100 * time.Millisecond})
	assert.Equal(t, time.Second, p.cfg.Interval)

	p, _ = newProcessor(t, new(userRepoMock), true, ProcessorConfig{})
	assert.Equal(t, 30*time.Second, p.cfg.Interval)
}
