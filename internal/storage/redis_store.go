package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore mirrors a cache document into redis so the API can serve it
// without touching the filesystem of the job host. Documents do not expire;
// each rebuild overwrites the key.
type RedisStore[T any] struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisStore[T any](client *redis.Client, key string) *RedisStore[T] {
	return &RedisStore[T]{
		client: client,
		key:    key,
		ctx:    context.Background(),
	}
}

func (s *RedisStore[T]) Load() (T, error) {
	var doc T
	data, err := s.client.Get(s.ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("failed to get %s: %w", s.key, err)
	}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return doc, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	return doc, nil
}

func (s *RedisStore[T]) Save(doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.client.Set(s.ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", s.key, err)
	}
	return nil
}

// TieredStore writes a document to every backend and loads from the first
// that has it. The file backend stays authoritative; redis is a mirror.
type TieredStore[T any] struct {
	backends []DocumentRepository[T]
}

func NewTieredStore[T any](backends ...DocumentRepository[T]) *TieredStore[T] {
	return &TieredStore[T]{backends: backends}
}

func (s *TieredStore[T]) Load() (T, error) {
	var zero T
	for _, backend := range s.backends {
		doc, err := backend.Load()
		if err == nil {
			return doc, nil
		}
		if err != ErrNotFound {
			return zero, err
		}
	}
	return zero, ErrNotFound
}

func (s *TieredStore[T]) Save(doc T) error {
	for _, backend := range s.backends {
		if err := backend.Save(doc); err != nil {
			return err
		}
	}
	return nil
}
