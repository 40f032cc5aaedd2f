// Package graphstore is the primary backend adapter. It persists the social
// graph in Neo4j: users as nodes, a pending request as one directed REQUESTED
// edge, and an established connection as two directed CONNECTED edges sharing
// the same properties.
package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"socialmesh/backend/pkg/logger"
)

// Store handles all Neo4j database operations
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// New creates a new graph store backed by the given driver
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

// Name identifies the backend in logs
func (s *Store) Name() string {
	return "graph"
}

// EnsureUsers merges a node per user id so edge operations always have both
// endpoints present.
func (s *Store) EnsureUsers(ctx context.Context, userIDs ...string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		UNWIND $ids AS uid
		MERGE (u:User {id: uid})
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"ids": userIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure user nodes: %w", err)
	}

	return nil
}

// Helper functions

func getString(record *neo4j.Record, key string, defaultValue string) string {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getTime(record *neo4j.Record, key string, defaultValue time.Time) time.Time {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	// Neo4j datetime values come back as time.Time
	if t, ok := val.(time.Time); ok {
		return t
	}
	return defaultValue
}

func getInt(record *neo4j.Record, key string, defaultValue int) int {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if n, ok := val.(int64); ok {
		return int(n)
	}
	return defaultValue
}
