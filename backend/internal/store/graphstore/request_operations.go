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
// Connection Request Operations
// ============================================================================

// CreateRequest persists a PENDING connection request as a directed REQUESTED
// edge. MERGE keys on the edge itself, so a second concurrent create in the
// same direction collapses onto the existing edge instead of duplicating it.
func (s *Store) CreateRequest(ctx context.Context, req store.ConnectionRequest) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	createdAt := req.CreatedAt.UTC().Format(time.RFC3339)

	query := `
		MATCH (from:User {id: $fromID})
		MATCH (to:User {id: $toID})
		MERGE (from)-[r:REQUESTED]->(to)
		ON CREATE SET
			r.id = $requestID,
			r.type = $type,
			r.status = $status,
			r.created_at = datetime($createdAt)
		RETURN r.id as id
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"fromID":    req.FromUserID,
		"toID":      req.ToUserID,
		"requestID": req.RequestID,
		"type":      req.Type,
		"status":    string(store.RequestStatusPending),
		"createdAt": createdAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection request: %w", err)
	}

	s.logger.Info("Connection request created",
		zap.String("request_id", req.RequestID),
		zap.String("from", req.FromUserID),
		zap.String("to", req.ToUserID),
	)
	return nil
}

// PendingRequestExists reports whether a PENDING request exists between the
// pair in either direction.
func (s *Store) PendingRequestExists(ctx context.Context, userA, userB string) (bool, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {id: $userA})-[r:REQUESTED {status: $status}]-(b:User {id: $userB})
		RETURN count(r) > 0 as exists
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userA":  userA,
		"userB":  userB,
		"status": string(store.RequestStatusPending),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read pending request check: %w", err)
	}

	exists, _ := record.Get("exists")
	found, _ := exists.(bool)
	return found, nil
}

// GetRequestForRecipient returns the PENDING request with the given id
// addressed to toUserID, or nil if none matches.
func (s *Store) GetRequestForRecipient(ctx context.Context, requestID, toUserID string) (*store.ConnectionRequest, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (from:User)-[r:REQUESTED {id: $requestID, status: $status}]->(to:User {id: $toUserID})
		RETURN r.id as request_id, from.id as from_user_id, to.id as to_user_id,
			r.type as type, r.created_at as created_at
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"requestID": requestID,
		"toUserID":  toUserID,
		"status":    string(store.RequestStatusPending),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connection request: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to read connection request: %w", err)
		}
		return nil, nil
	}

	return requestFromRecord(result.Record()), nil
}

// ListPendingRequests returns all PENDING requests addressed to toUserID,
// newest first.
func (s *Store) ListPendingRequests(ctx context.Context, toUserID string) ([]store.ConnectionRequest, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (from:User)-[r:REQUESTED {status: $status}]->(to:User {id: $toUserID})
		RETURN r.id as request_id, from.id as from_user_id, to.id as to_user_id,
			r.type as type, r.created_at as created_at
		ORDER BY r.created_at DESC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"toUserID": toUserID,
		"status":   string(store.RequestStatusPending),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	requests := []store.ConnectionRequest{}
	for result.Next(ctx) {
		requests = append(requests, *requestFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending requests: %w", err)
	}

	return requests, nil
}

// DeleteRequest removes a request edge by id
func (s *Store) DeleteRequest(ctx context.Context, requestID string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (:User)-[r:REQUESTED {id: $requestID}]->(:User)
		DELETE r
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"requestID": requestID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete connection request: %w", err)
	}

	return nil
}

func requestFromRecord(record *neo4j.Record) *store.ConnectionRequest {
	return &store.ConnectionRequest{
		RequestID:  getString(record, "request_id", ""),
		FromUserID: getString(record, "from_user_id", ""),
		ToUserID:   getString(record, "to_user_id", ""),
		Type:       getString(record, "type", ""),
		Status:     store.RequestStatusPending,
		CreatedAt:  getTime(record, "created_at", time.Time{}),
	}
}
