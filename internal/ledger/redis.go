package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

const tokenKeyPrefix = "ledger:token:"

// RedisLedger shares the token ledger across instances through Redis. The
// holder identity is stored as the value; minting relies on SETNX so two
// concurrent mints of the same token cannot both succeed.
type RedisLedger struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func tokenKey(token id.TokenID) string {
	return tokenKeyPrefix + token.String()
}

func (l *RedisLedger) Mint(ctx context.Context, token id.TokenID, holder id.Identity) error {
	set, err := l.client.SetNX(ctx, tokenKey(token), holder.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("mint token %s: %w", token, err)
	}
	if !set {
		return sentinel.ErrConflict
	}
	return nil
}

func (l *RedisLedger) Exists(ctx context.Context, token id.TokenID) (bool, error) {
	n, err := l.client.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check token %s: %w", token, err)
	}
	return n > 0, nil
}

func (l *RedisLedger) HolderOf(ctx context.Context, token id.TokenID) (id.Identity, error) {
	holder, err := l.client.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve holder of token %s: %w", token, err)
	}
	return id.Identity(holder), nil
}
