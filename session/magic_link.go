package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MagicLinkStore 登录令牌：一次性，带 TTL，只存邮箱
type MagicLinkStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMagicLinkStore(rdb *redis.Client, ttl time.Duration) *MagicLinkStore {
	return &MagicLinkStore{rdb: rdb, ttl: ttl}
}

func linkKey(token string) string { return fmt.Sprintf("abl:magiclink:%s", token) }

func (s *MagicLinkStore) Save(ctx context.Context, token, email string) error {
	return s.rdb.Set(ctx, linkKey(token), strings.ToLower(email), s.ttl).Err()
}

// Consume 取出并立刻删除；重放同一 token 第二次会拿到 redis.Nil
func (s *MagicLinkStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.rdb.GetDel(ctx, linkKey(token)).Result()
	if err != nil {
		return "", err
	}
	return email, nil
}
