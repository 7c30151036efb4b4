package redisstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore holds one-time verification codes keyed by email. Codes are
// stored hashed with a TTL so every service instance sees the same state.
type OTPStore interface {
	Put(ctx context.Context, email, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, email string) (codeHash string, found bool, err error)
	Consume(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error)
}

type otpStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) OTPStore {
	return &otpStore{client: client}
}

func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func codeKey(email string) string {
	return "otp:code:" + strings.ToLower(email)
}

func attemptsKey(email string) string {
	return "otp:attempts:" + strings.ToLower(email)
}

func (s *otpStore) Put(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKey(email), codeHash, ttl)
	pipe.Del(ctx, attemptsKey(email))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *otpStore) Get(ctx context.Context, email string) (string, bool, error) {
	hash, err := s.client.Get(ctx, codeKey(email)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (s *otpStore) Consume(ctx context.Context, email string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, codeKey(email))
	pipe.Del(ctx, attemptsKey(email))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *otpStore) IncrementAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	key := attemptsKey(email)
	attempts, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if attempts == 1 {
		s.client.Expire(ctx, key, ttl)
	}
	return attempts, nil
}
