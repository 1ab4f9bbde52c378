package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGameTTL = 24 * time.Hour

// maxStatsRetries bounds optimistic retries when stats are updated
// concurrently.
const maxStatsRetries = 8

// RedisStore keeps saved games in Redis with a TTL, so several processes
// can resume each other's sessions.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl uses 24h.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultGameTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis connects to a redis:// URL and checks the connection.
func DialRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) keyGame(id string) string { return "powerchess:game:" + strings.TrimSpace(id) }
func (s *RedisStore) keyStats() string         { return "powerchess:stats" }

// SaveGame stores g and refreshes its TTL.
func (s *RedisStore) SaveGame(ctx context.Context, g SavedGame) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.keyGame(g.ID), raw, s.ttl).Err()
}

// LoadGame loads the game saved under id.
func (s *RedisStore) LoadGame(ctx context.Context, id string) (SavedGame, error) {
	raw, err := s.rdb.Get(ctx, s.keyGame(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SavedGame{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SavedGame{}, err
	}
	var g SavedGame
	if err := json.Unmarshal(raw, &g); err != nil {
		return SavedGame{}, err
	}
	return g, nil
}

// DeleteGame removes a saved game.
func (s *RedisStore) DeleteGame(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.keyGame(id)).Err()
}

// RecordResult updates the shared stats inside a WATCH transaction.
func (s *RedisStore) RecordResult(ctx context.Context, result GameResult) error {
	key := s.keyStats()
	update := func(tx *redis.Tx) error {
		stats, err := s.loadStats(ctx, tx)
		if err != nil {
			return err
		}
		stats.Record(result)
		raw, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxStatsRetries; i++ {
		err := s.rdb.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("record result: %w", redis.TxFailedErr)
}

// Stats loads the shared statistics.
func (s *RedisStore) Stats(ctx context.Context) (*GameStats, error) {
	return s.loadStats(ctx, s.rdb)
}

func (s *RedisStore) loadStats(ctx context.Context, c redis.Cmdable) (*GameStats, error) {
	stats := NewGameStats()
	raw, err := c.Get(ctx, s.keyStats()).Bytes()
	if errors.Is(err, redis.Nil) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
