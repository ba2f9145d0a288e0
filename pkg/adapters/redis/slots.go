// Package redis stores cache slots in Redis, one string key per slot.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aretw0/notesync/pkg/core"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "notesync"

// Slots implements core.Slots on a Redis client. Slots never expire.
type Slots struct {
	client *redis.Client
	prefix string
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *Slots {
	if client == nil {
		panic("redis.New: client is nil")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Slots{client: client, prefix: prefix}
}

// Open parses a redis:// URL and pings the server.
func Open(ctx context.Context, url, prefix string) (*Slots, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(client, prefix), nil
}

func (s *Slots) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, nil
}

func (s *Slots) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (s *Slots) Close() error {
	return s.client.Close()
}

// ComponentType implements introspection.Component.
func (s *Slots) ComponentType() string {
	return "redis"
}

func (s *Slots) key(k string) string {
	return s.prefix + ":" + k
}

var _ core.Slots = (*Slots)(nil)
