package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/gateway/github"
)

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/octocat":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"login":"octocat","name":"The Octocat","bio":"","avatar_url":"https://example.com/a.png"}`))
		case "/users/noname":
			w.Write([]byte(`{"message":"Not Found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := github.NewClient(server.URL, 2*time.Second, nil)

	t.Run("resolves a profile", func(t *testing.T) {
		record, err := client.Lookup(context.Background(), "octocat")
		require.NoError(t, err)
		assert.Equal(t, "octocat", record.Login)
		assert.Equal(t, "The Octocat", record.Name)
		assert.Equal(t, "https://example.com/a.png", record.AvatarURL)
		assert.Nil(t, record.Location)
	})

	t.Run("missing login field is an invalid username", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "noname")
		assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	})

	t.Run("not found is an invalid username", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	})
}

func TestLookup_Unreachable(t *testing.T) {
	client := github.NewClient("http://127.0.0.1:1", 500*time.Millisecond, nil)

	_, err := client.Lookup(context.Background(), "octocat")
	// Network failure collapses into the same user-facing error.
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
}
