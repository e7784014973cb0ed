package session

import (
	"context"
	"fmt"
	"time"

	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
	"github.com/theplow-kwak/mcp-confluence/session/inmemory"
	redis_session "github.com/theplow-kwak/mcp-confluence/session/redis"
)

// Store keeps ordered conversation histories keyed by session id. Sessions
// are logically independent; implementations must allow concurrent access
// across keys.
type Store interface {
	// Ensure returns the history for id when known. An unknown or empty id
	// mints a fresh session id with an empty history.
	Ensure(ctx context.Context, id string, ttl time.Duration) (string, []models.Message, error)
	// Get returns the history for id, reporting whether the session exists.
	Get(ctx context.Context, id string) ([]models.Message, bool, error)
	// Put persists the full updated history under id.
	Put(ctx context.Context, id string, history []models.Message, ttl time.Duration) error
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// NewStore builds the configured conversation store.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case InMemoryStore, "":
		return inmemory.NewSessionStore(), nil
	case RedisStore:
		return redis_session.NewSessionStore(context.Background(), cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Store)
	}
}
