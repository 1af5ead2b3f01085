package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halvard/scout/internal/log"
)

// keyPrefix namespaces session keys in a shared Redis instance.
const keyPrefix = "conversation"

// RedisStore persists session history as a Redis list per user with a
// TTL refreshed on every append. RPUSH keeps appends atomic; there is
// no Go-side state, so the store is safe for concurrent use.
type RedisStore struct {
	client *redis.Client
	logger log.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr string, db int, logger log.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if logger == nil {
		logger = log.NewNop()
	}
	return &RedisStore{client: client, logger: logger}, nil
}

func key(userID string) string {
	return keyPrefix + ":" + userID
}

// Append adds an entry to the user's list and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, userID, role, text string) error {
	data, err := json.Marshal(Entry{Role: role, Text: text})
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}

	k := key(userID)
	if err := s.client.RPush(ctx, k, data).Err(); err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	if err := s.client.Expire(ctx, k, TTL).Err(); err != nil {
		return fmt.Errorf("refreshing history expiry: %w", err)
	}

	s.logger.Debug("appended history entry", "user_id", userID, "role", role)
	return nil
}

// History returns the full ordered log for the user. Entries that fail to
// decode are skipped rather than failing the whole read.
func (s *RedisStore) History(ctx context.Context, userID string) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Warn("skipping malformed history entry", "user_id", userID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear deletes the user's log.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
