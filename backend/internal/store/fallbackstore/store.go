// Package fallbackstore is the degraded backend adapter. It keeps each record
// kind in a named flat collection: a JSON array stored under one Redis key,
// rewritten wholesale on every mutation (read-modify-write). A connection is a
// single undirected record keyed by the normalized pair.
package fallbackstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
	"socialmesh/backend/pkg/logger"
)

const (
	requestsKey    = "socialmesh:connection_requests"
	connectionsKey = "socialmesh:connections"
	typeChangesKey = "socialmesh:type_change_requests"
)

// Client is the subset of redis operations the store uses. *redis.Client
// satisfies it; tests provide an in-memory implementation.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Store handles all fallback flat-record operations
type Store struct {
	client Client
	logger *zap.Logger
}

// New creates a new fallback store backed by the given client
func New(client Client) *Store {
	return &Store{
		client: client,
		logger: logger.Get(),
	}
}

// Name identifies the backend in logs
func (s *Store) Name() string {
	return "fallback"
}

// EnsureUsers is a no-op: the flat store has no node concept
func (s *Store) EnsureUsers(ctx context.Context, userIDs ...string) error {
	return nil
}

// readCollection loads a named collection into dst. A missing key is an empty
// collection.
func (s *Store) readCollection(ctx context.Context, key string, dst interface{}) error {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode collection %s: %w", key, err)
	}
	return nil
}

// writeCollection replaces a named collection wholesale
func (s *Store) writeCollection(ctx context.Context, key string, src interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, string(raw), 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", key, err)
	}
	return nil
}

func (s *Store) readRequests(ctx context.Context) ([]store.ConnectionRequest, error) {
	requests := []store.ConnectionRequest{}
	if err := s.readCollection(ctx, requestsKey, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) readConnections(ctx context.Context) ([]store.Connection, error) {
	connections := []store.Connection{}
	if err := s.readCollection(ctx, connectionsKey, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

func (s *Store) readTypeChanges(ctx context.Context) ([]store.TypeChangeRequest, error) {
	requests := []store.TypeChangeRequest{}
	if err := s.readCollection(ctx, typeChangesKey, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// samePair reports whether the two unordered pairs match
func samePair(a1, b1, a2, b2 string) bool {
	x1, y1 := store.NormalizePair(a1, b1)
	x2, y2 := store.NormalizePair(a2, b2)
	return x1 == x2 && y1 == y2
}
