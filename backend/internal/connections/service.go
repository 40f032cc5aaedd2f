// Package connections owns the connection-request lifecycle
// (PENDING -> accepted/rejected) and the established-connection registry.
// Every operation routes through the backend selector once per call.
package connections

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"socialmesh/backend/internal/directory"
	"socialmesh/backend/internal/store"
	"socialmesh/backend/pkg/errors"
	"socialmesh/backend/pkg/logger"
)

// Actions accepted by RespondToRequest
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// PendingRequest is a connection request enriched with the sender's profile
type PendingRequest struct {
	RequestID   string            `json:"request_id"`
	FromUserID  string            `json:"from_user_id"`
	Type        string            `json:"type"`
	CreatedAt   time.Time         `json:"created_at"`
	FromDisplay directory.Profile `json:"from_display"`
}

// ConnectionView is a connection as seen from one endpoint, enriched with the
// counterpart's profile
type ConnectionView struct {
	UserID  string            `json:"user_id"`
	Type    string            `json:"type"`
	SubType string            `json:"sub_type,omitempty"`
	Since   time.Time         `json:"since"`
	Display directory.Profile `json:"display"`
}

// Service implements the request lifecycle and connection registry
type Service struct {
	selector  *store.Selector
	directory directory.Directory
	logger    *zap.Logger
}

// NewService creates a new connections service
func NewService(selector *store.Selector, dir directory.Directory) *Service {
	return &Service{
		selector:  selector,
		directory: dir,
		logger:    logger.Get(),
	}
}

// SendRequest creates a PENDING connection request from fromID to toID.
// Preconditions: the pair is not already connected and has no pending request
// in either direction.
func (s *Service) SendRequest(ctx context.Context, fromID, toID, connType string) (string, error) {
	if fromID == "" {
		return "", errors.NewValidation("from_user_id", "required")
	}
	if toID == "" {
		return "", errors.NewValidation("to_user_id", "required")
	}
	if connType == "" {
		return "", errors.NewValidation("type", "required")
	}
	if fromID == toID {
		return "", errors.NewValidation("to_user_id", "cannot request a connection with yourself")
	}

	st := s.selector.Pick(ctx)

	conn, err := st.GetConnection(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if conn != nil {
		return "", errors.NewAlreadyConnected(fromID, toID)
	}

	pending, err := st.PendingRequestExists(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if pending {
		return "", errors.NewRequestAlreadyPending(fromID, toID)
	}

	if err := st.EnsureUsers(ctx, fromID, toID); err != nil {
		return "", err
	}

	req := store.ConnectionRequest{
		RequestID:  uuid.NewString(),
		FromUserID: fromID,
		ToUserID:   toID,
		Type:       connType,
		Status:     store.RequestStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := st.CreateRequest(ctx, req); err != nil {
		return "", err
	}

	s.logger.Info("Connection request sent",
		zap.String("request_id", req.RequestID),
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.String("backend", st.Name()),
	)
	return req.RequestID, nil
}

// ListPendingRequests returns all requests awaiting userID's decision,
// enriched with sender profiles. Backend read failures degrade to an empty
// list so listing never hard-fails during an outage.
func (s *Service) ListPendingRequests(ctx context.Context, userID string) []PendingRequest {
	st := s.selector.Pick(ctx)

	requests, err := st.ListPendingRequests(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to list pending requests, degrading to empty",
			zap.String("user_id", userID),
			zap.String("backend", st.Name()),
			zap.Error(err),
		)
		return []PendingRequest{}
	}

	enriched := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		enriched = append(enriched, PendingRequest{
			RequestID:   req.RequestID,
			FromUserID:  req.FromUserID,
			Type:        req.Type,
			CreatedAt:   req.CreatedAt,
			FromDisplay: s.directory.Lookup(ctx, req.FromUserID),
		})
	}
	return enriched
}

// RespondToRequest resolves a request addressed to userID. Accept deletes the
// request and creates the connection; reject just deletes it. The lookup is
// scoped to the recipient, so another user's request id resolves to NotFound.
func (s *Service) RespondToRequest(ctx context.Context, requestID, userID, action, overrideType string) error {
	if requestID == "" {
		return errors.NewValidation("request_id", "required")
	}
	if userID == "" {
		return errors.NewValidation("user_id", "required")
	}
	if action != ActionAccept && action != ActionReject {
		return errors.NewValidation("action", "must be accept or reject")
	}

	st := s.selector.Pick(ctx)

	req, err := st.GetRequestForRecipient(ctx, requestID, userID)
	if err != nil {
		return err
	}
	if req == nil {
		return errors.NewNotFound("connection request", requestID)
	}

	if action == ActionReject {
		if err := st.DeleteRequest(ctx, requestID); err != nil {
			return err
		}
		s.logger.Info("Connection request rejected",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
		)
		return nil
	}

	connType := req.Type
	if overrideType != "" {
		connType = overrideType
	}

	if err := st.DeleteRequest(ctx, requestID); err != nil {
		return err
	}

	userA, userB := store.NormalizePair(req.FromUserID, req.ToUserID)
	conn := store.Connection{
		UserA: userA,
		UserB: userB,
		Type:  connType,
		Since: time.Now().UTC(),
	}
	if err := st.CreateConnection(ctx, conn); err != nil {
		return err
	}

	s.logger.Info("Connection request accepted",
		zap.String("request_id", requestID),
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.String("type", connType),
	)
	return nil
}

// ListConnections returns all connections touching userID, enriched with
// counterpart profiles. Read failures degrade to an empty list.
func (s *Service) ListConnections(ctx context.Context, userID string) []ConnectionView {
	st := s.selector.Pick(ctx)

	connections, err := st.ListConnections(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to list connections, degrading to empty",
			zap.String("user_id", userID),
			zap.String("backend", st.Name()),
			zap.Error(err),
		)
		return []ConnectionView{}
	}

	views := make([]ConnectionView, 0, len(connections))
	for _, conn := range connections {
		counterpart := conn.Counterpart(userID)
		views = append(views, ConnectionView{
			UserID:  counterpart,
			Type:    conn.Type,
			SubType: conn.SubType,
			Since:   conn.Since,
			Display: s.directory.Lookup(ctx, counterpart),
		})
	}
	return views
}

// RemoveConnection deletes the connection between userID and targetID. It is
// not silently idempotent: removing a missing connection fails NotFound.
func (s *Service) RemoveConnection(ctx context.Context, userID, targetID string) error {
	if userID == "" {
		return errors.NewValidation("user_id", "required")
	}
	if targetID == "" {
		return errors.NewValidation("target_id", "required")
	}

	st := s.selector.Pick(ctx)

	removed, err := st.RemoveConnection(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return errors.NewNotFound("connection", userID+"/"+targetID)
	}

	s.logger.Info("Connection removed",
		zap.String("user_id", userID),
		zap.String("target_id", targetID),
		zap.String("backend", st.Name()),
	)
	return nil
}
