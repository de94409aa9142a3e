package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken = "token"
	fieldRole  = "userRole"
)

// RedisStore keeps each session as a hash at session:<id> with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	role, _ := ParseRole(vals[fieldRole])
	return Session{
		Token: vals[fieldToken],
		Role:  role,
	}, nil
}

func (s *RedisStore) SetRole(ctx context.Context, id string, role Role) error {
	if role == RoleAnonymous {
		return s.removeField(ctx, id, fieldRole)
	}
	return s.setField(ctx, id, fieldRole, string(role))
}

func (s *RedisStore) SetToken(ctx context.Context, id, token string) error {
	if token == "" {
		return s.removeField(ctx, id, fieldToken)
	}
	return s.setField(ctx, id, fieldToken, token)
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) setField(ctx context.Context, id, field, value string) error {
	key := sessionKey(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, value)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set session %s: %w", field, err)
	}
	return nil
}

func (s *RedisStore) removeField(ctx context.Context, id, field string) error {
	if err := s.client.HDel(ctx, sessionKey(id), field).Err(); err != nil {
		return fmt.Errorf("remove session %s: %w", field, err)
	}
	return nil
}
