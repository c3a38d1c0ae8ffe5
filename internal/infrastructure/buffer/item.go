package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one pending registration waiting for Postgres to come back.
type Item struct {
	ID        string          `json:"id"`
	Login     string          `json:"login"`
	Data      json.RawMessage `json:"data"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
