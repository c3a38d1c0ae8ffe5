package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_ReverseOrder(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"postgres", "processor", "server"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"server", "processor", "postgres"}, order)
}

func TestShutdown_CollectsErrors(t *testing.T) {
	m := New(time.Second, nil)

	hookErr := errors.New("close failed")
	var reached bool
	m.Register("postgres", func(ctx context.Context) error {
		reached = true
		return nil
	})
	m.Register("server", func(ctx context.Context) error { return hookErr })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, hookErr)
	assert.True(t, reached, "a failing hook must not stop the ones beneath it")
}

func TestShutdown_SkipsAfterBudget(t *testing.T) {
	m := New(50*time.Millisecond, nil)

	var reached bool
	m.Register("postgres", func(ctx context.Context) error {
		reached = true
		return nil
	})
	m.Register("server", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.Error(t, err)
	assert.False(t, reached, "hooks past the budget are skipped, not run late")
}

func TestRegister_IgnoresNil(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("noop", nil)
	assert.NoError(t, m.Shutdown(context.Background()))
}
