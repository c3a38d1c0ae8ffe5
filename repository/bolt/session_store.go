package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	boltdb "go.etcd.io/bbolt"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
)

// sessionKey matches the storage key the mobile builds used for the
// registered username.
const sessionKey = "githubUsername"

type sessionStore struct {
	db     *boltdb.DB
	bucket []byte
}

// OpenSessionStore opens (or creates) the device-local BoltDB file that
// holds the session flag.
func OpenSessionStore(path string) (repository.SessionStore, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	db, err := boltdb.Open(path, 0o600, &boltdb.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, err
	}

	store := &sessionStore{db: db, bucket: []byte("session")}
	if err := db.Update(func(tx *boltdb.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db.Close, nil
}

func (s *sessionStore) Current(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session *domain.Session
	err := s.db.View(func(tx *boltdb.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(sessionKey))
		if raw == nil {
			return nil
		}
		var parsed domain.Session
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return err
		}
		session = &parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !session.Active() {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(sessionKey), payload)
	})
}

func (s *sessionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(sessionKey))
	})
}
