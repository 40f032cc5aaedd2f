package fallbackstore

import (
	"context"

	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
)

// CreateConnection stores one undirected record for the pair, normalized so
// both orderings of the endpoints key the same record.
func (s *Store) CreateConnection(ctx context.Context, conn store.Connection) error {
	connections, err := s.readConnections(ctx)
	if err != nil {
		return err
	}

	conn.UserA, conn.UserB = store.NormalizePair(conn.UserA, conn.UserB)
	connections = append(connections, conn)

	if err := s.writeCollection(ctx, connectionsKey, connections); err != nil {
		return err
	}

	s.logger.Info("Connection created",
		zap.String("user_a", conn.UserA),
		zap.String("user_b", conn.UserB),
		zap.String("type", conn.Type),
	)
	return nil
}

// GetConnection returns the record for the unordered pair, or nil
func (s *Store) GetConnection(ctx context.Context, userA, userB string) (*store.Connection, error) {
	connections, err := s.readConnections(ctx)
	if err != nil {
		return nil, err
	}

	for i := range connections {
		if samePair(connections[i].UserA, connections[i].UserB, userA, userB) {
			conn := connections[i]
			return &conn, nil
		}
	}
	return nil, nil
}

// ListConnections returns all records touching userID
func (s *Store) ListConnections(ctx context.Context, userID string) ([]store.Connection, error) {
	connections, err := s.readConnections(ctx)
	if err != nil {
		return nil, err
	}

	matching := []store.Connection{}
	for _, conn := range connections {
		if conn.UserA == userID || conn.UserB == userID {
			matching = append(matching, conn)
		}
	}
	return matching, nil
}

// RemoveConnection deletes the pair's record and reports how many were
// removed. Zero means no connection existed.
func (s *Store) RemoveConnection(ctx context.Context, userA, userB string) (int, error) {
	connections, err := s.readConnections(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	remaining := connections[:0]
	for _, conn := range connections {
		if samePair(conn.UserA, conn.UserB, userA, userB) {
			removed++
			continue
		}
		remaining = append(remaining, conn)
	}

	if removed > 0 {
		if err := s.writeCollection(ctx, connectionsKey, remaining); err != nil {
			return 0, err
		}
	}

	s.logger.Info("Connection removed",
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.Int("records_removed", removed),
	)
	return removed, nil
}

// UpdateConnectionType rewrites the type attributes on the pair's record
func (s *Store) UpdateConnectionType(ctx context.Context, userA, userB, newType, newSubType string) (int, error) {
	connections, err := s.readConnections(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range connections {
		if samePair(connections[i].UserA, connections[i].UserB, userA, userB) {
			connections[i].Type = newType
			connections[i].SubType = newSubType
			updated++
		}
	}

	if updated > 0 {
		if err := s.writeCollection(ctx, connectionsKey, connections); err != nil {
			return 0, err
		}
	}
	return updated, nil
}
