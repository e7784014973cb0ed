package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/theplow-kwak/mcp-confluence/config"
	"github.com/theplow-kwak/mcp-confluence/models"
)

// Store keeps conversation histories in redis, JSON-encoded per session.
type Store struct {
	client *redis.Client
}

func NewSessionStore(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: rdb}, nil
}

func historyKey(id string) string { return fmt.Sprintf("session:%s:history", id) }

func (s *Store) Ensure(ctx context.Context, id string, ttl time.Duration) (string, []models.Message, error) {
	if id != "" {
		history, ok, err := s.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		if ok {
			_ = s.client.Expire(ctx, historyKey(id), ttl).Err()
			return id, history, nil
		}
	}

	newID := uuid.NewString()
	if err := s.client.Set(ctx, historyKey(newID), "[]", ttl).Err(); err != nil {
		return "", nil, err
	}
	return newID, nil, nil
}

func (s *Store) Get(ctx context.Context, id string) ([]models.Message, bool, error) {
	val, err := s.client.Get(ctx, historyKey(id)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var history []models.Message
	if err := json.Unmarshal([]byte(val), &history); err != nil {
		return nil, false, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return history, true, nil
}

func (s *Store) Put(ctx context.Context, id string, history []models.Message, ttl time.Duration) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, historyKey(id), data, ttl).Err()
}
