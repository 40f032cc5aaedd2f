package fallbackstore

import (
	"context"

	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
)

// Type-change requests live only in the fallback store so the mutual-approval
// workflow keeps working while the graph backend is down. Resolved requests
// stay in the collection as audit records.

// CreateTypeChange appends a pending type-change request
func (s *Store) CreateTypeChange(ctx context.Context, req store.TypeChangeRequest) error {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return err
	}

	requests = append(requests, req)

	if err := s.writeCollection(ctx, typeChangesKey, requests); err != nil {
		return err
	}

	s.logger.Info("Type change proposed",
		zap.String("request_id", req.RequestID),
		zap.String("from", req.FromUserID),
		zap.String("to", req.ToUserID),
		zap.String("proposed_type", req.ProposedType),
	)
	return nil
}

// GetTypeChange returns the request with the given id, or nil
func (s *Store) GetTypeChange(ctx context.Context, requestID string) (*store.TypeChangeRequest, error) {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].RequestID == requestID {
			req := requests[i]
			return &req, nil
		}
	}
	return nil, nil
}

// PendingTypeChangeExists reports whether a pending request exists for the
// pair in either direction.
func (s *Store) PendingTypeChangeExists(ctx context.Context, userA, userB string) (bool, error) {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return false, err
	}

	for _, req := range requests {
		if req.Status == store.TypeChangeStatusPending && samePair(req.FromUserID, req.ToUserID, userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

// ListPendingTypeChanges returns pending requests awaiting toUserID's decision
func (s *Store) ListPendingTypeChanges(ctx context.Context, toUserID string) ([]store.TypeChangeRequest, error) {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return nil, err
	}

	pending := []store.TypeChangeRequest{}
	for _, req := range requests {
		if req.Status == store.TypeChangeStatusPending && req.ToUserID == toUserID {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

// ListTypeChanges returns the full history where userID is sender or recipient
func (s *Store) ListTypeChanges(ctx context.Context, userID string) ([]store.TypeChangeRequest, error) {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return nil, err
	}

	history := []store.TypeChangeRequest{}
	for _, req := range requests {
		if req.FromUserID == userID || req.ToUserID == userID {
			history = append(history, req)
		}
	}
	return history, nil
}

// UpdateTypeChange replaces the stored request matching req.RequestID
func (s *Store) UpdateTypeChange(ctx context.Context, req store.TypeChangeRequest) error {
	requests, err := s.readTypeChanges(ctx)
	if err != nil {
		return err
	}

	for i := range requests {
		if requests[i].RequestID == req.RequestID {
			requests[i] = req
			break
		}
	}

	return s.writeCollection(ctx, typeChangesKey, requests)
}
