package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
)

// ============================================================================
// Connection Operations
// ============================================================================

// CreateConnection materializes a symmetric connection as two directed
// CONNECTED edges sharing the same type and since properties, created in one
// statement so the pair never ends up half-written.
func (s *Store) CreateConnection(ctx context.Context, conn store.Connection) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	since := conn.Since.UTC().Format(time.RFC3339)

	query := `
		MATCH (a:User {id: $userA})
		MATCH (b:User {id: $userB})
		MERGE (a)-[ab:CONNECTED]->(b)
		ON CREATE SET
			ab.type = $type,
			ab.sub_type = $subType,
			ab.since = datetime($since)
		MERGE (b)-[ba:CONNECTED]->(a)
		ON CREATE SET
			ba.type = $type,
			ba.sub_type = $subType,
			ba.since = datetime($since)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userA":   conn.UserA,
		"userB":   conn.UserB,
		"type":    conn.Type,
		"subType": conn.SubType,
		"since":   since,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}

	s.logger.Info("Connection created",
		zap.String("user_a", conn.UserA),
		zap.String("user_b", conn.UserB),
		zap.String("type", conn.Type),
	)
	return nil
}

// GetConnection returns the connection for the unordered pair, or nil
func (s *Store) GetConnection(ctx context.Context, userA, userB string) (*store.Connection, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {id: $userA})-[c:CONNECTED]->(b:User {id: $userB})
		RETURN c.type as type, c.sub_type as sub_type, c.since as since
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userA": userA,
		"userB": userB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connection: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to read connection: %w", err)
		}
		return nil, nil
	}

	record := result.Record()
	a, b := store.NormalizePair(userA, userB)
	return &store.Connection{
		UserA:   a,
		UserB:   b,
		Type:    getString(record, "type", ""),
		SubType: getString(record, "sub_type", ""),
		Since:   getTime(record, "since", time.Time{}),
	}, nil
}

// ListConnections returns all connections touching userID. Outgoing edges are
// sufficient because every connection carries one edge in each direction.
func (s *Store) ListConnections(ctx context.Context, userID string) ([]store.Connection, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userID})-[c:CONNECTED]->(other:User)
		RETURN other.id as other_id, c.type as type, c.sub_type as sub_type, c.since as since
		ORDER BY c.since DESC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	connections := []store.Connection{}
	for result.Next(ctx) {
		record := result.Record()
		a, b := store.NormalizePair(userID, getString(record, "other_id", ""))
		connections = append(connections, store.Connection{
			UserA:   a,
			UserB:   b,
			Type:    getString(record, "type", ""),
			SubType: getString(record, "sub_type", ""),
			Since:   getTime(record, "since", time.Time{}),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read connections: %w", err)
	}

	return connections, nil
}

// RemoveConnection deletes the edges in both directions and reports how many
// were removed. Zero means no connection existed.
func (s *Store) RemoveConnection(ctx context.Context, userA, userB string) (int, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {id: $userA})-[c:CONNECTED]-(b:User {id: $userB})
		DELETE c
		RETURN count(c) as removed
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userA": userA,
		"userB": userB,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove connection: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read removal count: %w", err)
	}

	removed := getInt(record, "removed", 0)
	s.logger.Info("Connection removed",
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.Int("edges_removed", removed),
	)
	return removed, nil
}

// UpdateConnectionType rewrites the type attributes on both directional edges
func (s *Store) UpdateConnectionType(ctx context.Context, userA, userB, newType, newSubType string) (int, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {id: $userA})-[c:CONNECTED]-(b:User {id: $userB})
		SET c.type = $type, c.sub_type = $subType
		RETURN count(c) as updated
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userA":   userA,
		"userB":   userB,
		"type":    newType,
		"subType": newSubType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update connection type: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read update count: %w", err)
	}

	updated := getInt(record, "updated", 0)
	s.logger.Info("Connection type updated",
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.String("type", newType),
		zap.Int("edges_updated", updated),
	)
	return updated, nil
}
