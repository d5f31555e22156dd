package redis

import (
	"context"
	"fmt"
	"time"

	"freelance_service/internal/config"

	"github.com/redis/go-redis/v9"
)

// * consumeScript deletes the key only when it holds the given code
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, cfg config.Redis) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func otpKey(email string) string {
	return "otp:" + email
}

// * Save stores the pending code for email, overwriting the previous one
func (r *RedisRepo) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	const op = "storage.redis.Save"

	if err := r.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Consume atomically deletes the pending code when it matches
func (r *RedisRepo) Consume(ctx context.Context, email, code string) (bool, error) {
	const op = "storage.redis.Consume"

	deleted, err := consumeScript.Run(ctx, r.client, []string{otpKey(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return deleted == 1, nil
}

// * Close closes the connection pool
func (r *RedisRepo) Close() {
	_ = r.client.Close()
}
