package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisCache maps bearer tokens to user ids in front of the document store.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{Client: client, TTL: DefaultTokenTTL}

	return redisCache, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) SetToken(ctx context.Context, token string, userID int) error {
	return r.Client.Set(ctx, MakeAuthTokenKey(token), userID, r.TTL).Err()
}

// GetToken returns ErrCacheMiss when the token is not cached.
func (r *RedisCache) GetToken(ctx context.Context, token string) (int, error) {
	value, err := r.Client.Get(ctx, MakeAuthTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, err
	}
	userID, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (r *RedisCache) DeleteTokens(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = MakeAuthTokenKey(t)
	}
	return deleteTokensScript.Run(ctx, r.Client, keys).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}
