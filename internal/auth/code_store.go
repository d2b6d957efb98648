// Package auth holds the pending one-time login codes. Codes live in
// Redis so they expire on their own and survive API restarts.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("code not found or expired")

type CodeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCodeStore(rdb *redis.Client, ttl time.Duration) *CodeStore {
	return &CodeStore{rdb: rdb, ttl: ttl}
}

func key(playerName string) string {
	return "login_code:" + playerName
}

func (s *CodeStore) Put(ctx context.Context, playerName, code string) error {
	return s.rdb.Set(ctx, key(playerName), code, s.ttl).Err()
}

// Consume returns the pending code and deletes it, so a code verifies at
// most once regardless of how many verify calls race.
func (s *CodeStore) Consume(ctx context.Context, playerName string) (string, error) {
	code, err := s.rdb.GetDel(ctx, key(playerName)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}
