package fallbackstore

import (
	"context"

	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
)

// CreateRequest appends a PENDING request record to the flat collection.
// The caller has already checked the pair preconditions; this append is the
// unguarded half of the check-then-append sequence.
func (s *Store) CreateRequest(ctx context.Context, req store.ConnectionRequest) error {
	requests, err := s.readRequests(ctx)
	if err != nil {
		return err
	}

	req.Status = store.RequestStatusPending
	requests = append(requests, req)

	if err := s.writeCollection(ctx, requestsKey, requests); err != nil {
		return err
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
	requests, err := s.readRequests(ctx)
	if err != nil {
		return false, err
	}

	for _, req := range requests {
		if samePair(req.FromUserID, req.ToUserID, userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

// GetRequestForRecipient returns the PENDING request with the given id
// addressed to toUserID, or nil if none matches.
func (s *Store) GetRequestForRecipient(ctx context.Context, requestID, toUserID string) (*store.ConnectionRequest, error) {
	requests, err := s.readRequests(ctx)
	if err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].RequestID == requestID && requests[i].ToUserID == toUserID {
			req := requests[i]
			return &req, nil
		}
	}
	return nil, nil
}

// ListPendingRequests returns all PENDING requests addressed to toUserID
func (s *Store) ListPendingRequests(ctx context.Context, toUserID string) ([]store.ConnectionRequest, error) {
	requests, err := s.readRequests(ctx)
	if err != nil {
		return nil, err
	}

	pending := []store.ConnectionRequest{}
	for _, req := range requests {
		if req.ToUserID == toUserID {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

// DeleteRequest removes a request record by id
func (s *Store) DeleteRequest(ctx context.Context, requestID string) error {
	requests, err := s.readRequests(ctx)
	if err != nil {
		return err
	}

	remaining := requests[:0]
	for _, req := range requests {
		if req.RequestID != requestID {
			remaining = append(remaining, req)
		}
	}

	return s.writeCollection(ctx, requestsKey, remaining)
}
