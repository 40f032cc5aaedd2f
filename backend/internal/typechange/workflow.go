// Package typechange owns the mutual-approval workflow for altering an
// existing connection's type. Requests persist in the fallback flat store so
// proposals and decisions keep working while the graph backend is down; an
// approval propagates the new type into whichever backends are reachable.
package typechange

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"socialmesh/backend/internal/store"
	"socialmesh/backend/pkg/errors"
	"socialmesh/backend/pkg/logger"
)

// Actions accepted by Respond
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Workflow implements the type-change mutual-approval state machine
type Workflow struct {
	requests store.TypeChangeStore
	selector *store.Selector
	logger   *zap.Logger
}

// NewWorkflow creates a new type-change workflow. requests is the fallback
// store's type-change collection.
func NewWorkflow(requests store.TypeChangeStore, selector *store.Selector) *Workflow {
	return &Workflow{
		requests: requests,
		selector: selector,
		logger:   logger.Get(),
	}
}

// Propose creates a pending type-change request from fromID to toID.
// Preconditions: a connection exists for the pair and no other type-change
// request is pending for it in either direction. The connection's current
// type is snapshotted for audit and display.
func (w *Workflow) Propose(ctx context.Context, fromID, toID, proposedType, proposedSubType string) (string, error) {
	if fromID == "" {
		return "", errors.NewValidation("from_user_id", "required")
	}
	if toID == "" {
		return "", errors.NewValidation("to_user_id", "required")
	}
	if proposedType == "" {
		return "", errors.NewValidation("proposed_type", "required")
	}

	conn, err := w.selector.Pick(ctx).GetConnection(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", errors.NewNotConnected(fromID, toID)
	}

	pending, err := w.requests.PendingTypeChangeExists(ctx, fromID, toID)
	if err != nil {
		return "", err
	}
	if pending {
		return "", errors.NewTypeChangePending(fromID, toID)
	}

	req := store.TypeChangeRequest{
		RequestID:       uuid.NewString(),
		FromUserID:      fromID,
		ToUserID:        toID,
		CurrentType:     conn.Type,
		ProposedType:    proposedType,
		ProposedSubType: proposedSubType,
		Status:          store.TypeChangeStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := w.requests.CreateTypeChange(ctx, req); err != nil {
		return "", err
	}

	w.logger.Info("Type change proposed",
		zap.String("request_id", req.RequestID),
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.String("current_type", req.CurrentType),
		zap.String("proposed_type", proposedType),
	)
	return req.RequestID, nil
}

// ListPending returns pending requests awaiting userID's decision. Read
// failures degrade to an empty list.
func (w *Workflow) ListPending(ctx context.Context, userID string) []store.TypeChangeRequest {
	requests, err := w.requests.ListPendingTypeChanges(ctx, userID)
	if err != nil {
		w.logger.Warn("Failed to list pending type changes, degrading to empty",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return []store.TypeChangeRequest{}
	}
	return requests
}

// ListAll returns the full request history (any status) where userID is
// sender or recipient. Read failures degrade to an empty list.
func (w *Workflow) ListAll(ctx context.Context, userID string) []store.TypeChangeRequest {
	requests, err := w.requests.ListTypeChanges(ctx, userID)
	if err != nil {
		w.logger.Warn("Failed to list type change history, degrading to empty",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return []store.TypeChangeRequest{}
	}
	return requests
}

// Respond resolves a pending request. Only the designated recipient may call
// it. Approval updates the connection's type in the fallback store
// unconditionally and in the graph store if it is currently healthy — a
// best-effort dual write, not a transaction.
func (w *Workflow) Respond(ctx context.Context, requestID, userID, action string) (*store.TypeChangeRequest, error) {
	if requestID == "" {
		return nil, errors.NewValidation("request_id", "required")
	}
	if userID == "" {
		return nil, errors.NewValidation("user_id", "required")
	}
	if action != ActionApprove && action != ActionReject {
		return nil, errors.NewValidation("action", "must be approve or reject")
	}

	req, err := w.requests.GetTypeChange(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.NewNotFound("type change request", requestID)
	}
	if req.ToUserID != userID {
		return nil, errors.NewUnauthorized(requestID, userID)
	}
	if req.Status != store.TypeChangeStatusPending {
		return nil, errors.NewAlreadyProcessed(requestID, string(req.Status))
	}

	now := time.Now().UTC()
	req.RespondedAt = &now
	if action == ActionApprove {
		req.Status = store.TypeChangeStatusApproved
	} else {
		req.Status = store.TypeChangeStatusRejected
	}

	if err := w.requests.UpdateTypeChange(ctx, *req); err != nil {
		return nil, err
	}

	if action == ActionApprove {
		w.propagate(ctx, req)
	}

	w.logger.Info("Type change resolved",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("status", string(req.Status)),
	)
	return req, nil
}

// propagate applies the approved type to the backends. Divergence between the
// two writes persists until the next health transition; no rollback.
func (w *Workflow) propagate(ctx context.Context, req *store.TypeChangeRequest) {
	fallback := w.selector.Fallback()
	if _, err := fallback.UpdateConnectionType(ctx, req.FromUserID, req.ToUserID, req.ProposedType, req.ProposedSubType); err != nil {
		w.logger.Error("Failed to apply type change to fallback store",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
	}

	if !w.selector.Healthy(ctx) {
		w.logger.Warn("Graph backend unhealthy, type change applied to fallback only",
			zap.String("request_id", req.RequestID),
		)
		return
	}

	graph := w.selector.Graph()
	if _, err := graph.UpdateConnectionType(ctx, req.FromUserID, req.ToUserID, req.ProposedType, req.ProposedSubType); err != nil {
		w.logger.Error("Failed to apply type change to graph store",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
	}
}
