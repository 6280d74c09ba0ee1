package store

import (
	"context"
	"encoding/json"
	"fmt"
	"imagestudio/internal/core/domain"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const DefaultKeyPrefix = "imagestudio:"

// Redis keeps every collection as a Redis list of JSON encoded records.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Redis{rdb: rdb, prefix: prefix}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis PING %s: %w", addr, err)
	}

	return rdb, nil
}

func (r *Redis) key(path string) string { return r.prefix + path }

func (r *Redis) Append(ctx context.Context, path string, record domain.HistoryRecord) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("error generating record id: %w", err)
	}
	record.ID = id.String()

	b, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	if err := r.rdb.RPush(ctx, r.key(path), string(b)).Err(); err != nil {
		return "", fmt.Errorf("redis RPUSH history: %w", err)
	}

	log.Debug().Str("path", path).Str("id", record.ID).Msg("appended history record")

	return record.ID, nil
}

func (r *Redis) List(ctx context.Context, path string) ([]domain.HistoryRecord, error) {
	items, err := r.rdb.LRange(ctx, r.key(path), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis LRANGE history: %w", err)
	}

	records := make([]domain.HistoryRecord, 0, len(items))
	for _, js := range items {
		var rec domain.HistoryRecord
		if err := json.Unmarshal([]byte(js), &rec); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping malformed history record")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
