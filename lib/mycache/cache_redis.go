package mycache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) (*redisCache, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &redisCache{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (r *redisCache) Get(c context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(c, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error fetching key %s from redis: %s", key, err)
	}

	return val, true, nil
}

func (r *redisCache) Set(c context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(c, key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("error storing key %s in redis: %s", key, err)
	}

	return nil
}
