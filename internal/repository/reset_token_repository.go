package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetTokenNotFound is returned when a reset token is absent or expired.
var ErrResetTokenNotFound = fmt.Errorf("reset token not found")

// ResetTokenRepository stores one-shot password reset tokens in Redis; the
// TTL is the token lifetime and consumption deletes the key atomically.
type ResetTokenRepository interface {
	Store(ctx context.Context, token, accountID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

type resetTokenRepository struct {
	client *redis.Client
}

// NewResetTokenRepository builds the repository.
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &resetTokenRepository{client: client}
}

func resetKey(token string) string {
	return "pwreset:" + token
}

func (r *resetTokenRepository) Store(ctx context.Context, token, accountID string, ttl time.Duration) error {
	return r.client.Set(ctx, resetKey(token), accountID, ttl).Err()
}

func (r *resetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	accountID, err := r.client.GetDel(ctx, resetKey(token)).Result()
	if err == redis.Nil {
		return "", ErrResetTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}
