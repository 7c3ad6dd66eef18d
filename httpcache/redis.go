package httpcache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache stored in a redis server, expiration is delegated to redis.
type Redis struct {
	Client *redis.Client
	Prefix string // prepended to every key
}

// NewRedis returns a Redis cache connected to addr.
func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{Addr: addr}), Prefix: "etfcap:"}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if err != nil {
		// redis.Nil or a connection error, either way it is a miss.
		return nil, false
	}
	return value, true
}

func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, r.Prefix+key, value, ttl).Err()
}

// Close closes the connection to the server.
func (r *Redis) Close() error { return r.Client.Close() }
