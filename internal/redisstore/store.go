// Package redisstore persists workflow records in Redis, one string key per
// workflow id.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/workflowstore"
)

// DefaultKeyPrefix is prepended to workflow ids when no prefix is configured.
const DefaultKeyPrefix = "stepflow:workflow:"

// Options configures the Redis connection.
type Options struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// Store is a Redis-backed implementation of workflowstore.Store.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Address == "" {
		return nil, errors.New("redisstore: address must not be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", opts.Address, err)
	}
	return NewWithClient(client, opts.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Key returns the Redis key holding the record for workflowID.
func (s *Store) Key(workflowID string) string {
	return s.prefix + workflowID
}

// Load reads the record for workflowID. A missing key yields nil.
func (s *Store) Load(ctx context.Context, workflowID string) (*graph.Snapshot, error) {
	data, err := s.client.Get(ctx, s.Key(workflowID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			ctxlog.FromContext(ctx).Debug("No workflow record in redis.", "key", s.Key(workflowID))
			return nil, nil
		}
		return nil, fmt.Errorf("redisstore: get %s: %w", s.Key(workflowID), err)
	}
	return workflowstore.Decode(data)
}

// Save stores the record without expiry.
func (s *Store) Save(ctx context.Context, workflowID string, snap graph.Snapshot) error {
	data, err := workflowstore.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key(workflowID), data, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", s.Key(workflowID), err)
	}
	return nil
}

// Delete removes the key. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	if err := s.client.Del(ctx, s.Key(workflowID)).Err(); err != nil {
		return fmt.Errorf("redisstore: del %s: %w", s.Key(workflowID), err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
