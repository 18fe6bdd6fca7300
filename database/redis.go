package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ConnectRedis returns nil when url is empty or the server is unreachable;
// callers then run without the cache.
func ConnectRedis(ctx context.Context, url string, log zerolog.Logger) *redis.Client {
	if url == "" {
		log.Info().Msg("REDIS_URL not set, running without cache")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, running without cache")
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis not available, running without cache")
		_ = client.Close()
		return nil
	}

	log.Info().Msg("connected to redis")
	return client
}
