package cartsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgredis "github.com/inventra/pos-backend/pkg/redis"
)

// ErrSessionNotFound signals an unknown or expired session token.
var ErrSessionNotFound = fmt.Errorf("cart session not found")

// Store persists scan sessions between requests.
type Store interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type redisCommands interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartSessionKey(token string) string
}

// RedisStore keeps sessions as JSON blobs under the cart namespace.
type RedisStore struct {
	client redisCommands
}

// NewRedisStore builds a session store backed by the shared Redis client.
func NewRedisStore(client *pkgredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.client.CartSessionKey(session.Token), string(payload), ttl)
}

func (s *RedisStore) Load(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.client.CartSessionKey(token))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.client.CartSessionKey(token))
}
