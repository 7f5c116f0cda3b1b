package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// popScript pops ARGV[1] items from the head of list only if it holds that
// many, otherwise returns nil and leaves the list untouched.
var popScript = redis.NewScript(`
local n = tonumber(ARGV[1])
if redis.call('LLEN', KEYS[1]) < n then
	return false
end
return redis.call('LPOP', KEYS[1], n)
`)

// Redis store keeps passwords in a list.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis ...
func NewRedis(addr, password string, db int, key string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		key: key,
	}
}

// FetchAndDelete pops passwords atomically.
func (r *Redis) FetchAndDelete(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, errBadCount
	}
	res, err := popScript.Run(ctx, r.client, []string{r.key}, count).StringSlice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInsufficientRows
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Ping server.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close client.
func (r *Redis) Close() error {
	return r.client.Close()
}
