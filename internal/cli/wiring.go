package cli

import (
	"context"
	"errors"

	"imagestudio/internal/adapters/generator"
	"imagestudio/internal/adapters/store"
	"imagestudio/internal/config"
	"imagestudio/internal/core/port"

	"github.com/rs/zerolog/log"
)

var errNoHistoryStore = errors.New("history needs a redis store (set redis.addr)")

func newGenerator(cfg *config.Config) (*generator.Replicate, error) {
	if err := cfg.RequireAPIToken(); err != nil {
		return nil, err
	}

	return generator.NewReplicate(cfg.Replicate.BaseURL, cfg.Replicate.APIToken, cfg.Replicate.PollInterval)
}

// newRedisStore connects to the configured redis. It returns a nil store when
// redis is not configured.
func newRedisStore(ctx context.Context, cfg *config.Config) (port.HistoryStore, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}

	rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis client")
		}
	}

	log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("using redis history store")

	return store.NewRedis(rdb, cfg.Redis.KeyPrefix), closeFn, nil
}
