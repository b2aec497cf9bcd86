package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authshell/core/kv"
)

var _ kv.Store = (*Store)(nil)

// Store is a kv.Store over plain Redis strings. Values never expire.
type Store struct {
	client redis.Cmdable
	prefix string
}

// NewStore wraps client. Every key is stored as prefix+key.
func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(key)).Err()
}
