// Package store defines the storage contract shared by the graph backend and
// the flat-record fallback backend, plus the per-call backend selector. The
// graph backend encodes a symmetric connection as two directed edges, the
// fallback as one undirected record; that asymmetry stays behind this interface.
package store

import "context"

// Store is implemented by both backend adapters. Every operation acts on
// exactly one backend per call.
type Store interface {
	// Name identifies the backend in logs
	Name() string

	// EnsureUsers makes sure nodes exist for the given user ids before an
	// edge operation touches them. The fallback store has no node concept
	// and treats this as a no-op.
	EnsureUsers(ctx context.Context, userIDs ...string) error

	// CreateRequest persists a PENDING connection request
	CreateRequest(ctx context.Context, req ConnectionRequest) error

	// PendingRequestExists reports whether a PENDING request exists between
	// the pair, in either direction
	PendingRequestExists(ctx context.Context, userA, userB string) (bool, error)

	// GetRequestForRecipient returns the PENDING request with the given id
	// addressed to toUserID, or nil if none exists
	GetRequestForRecipient(ctx context.Context, requestID, toUserID string) (*ConnectionRequest, error)

	// ListPendingRequests returns all PENDING requests addressed to toUserID
	ListPendingRequests(ctx context.Context, toUserID string) ([]ConnectionRequest, error)

	// DeleteRequest removes a request by id
	DeleteRequest(ctx context.Context, requestID string) error

	// CreateConnection establishes a connection for the pair
	CreateConnection(ctx context.Context, conn Connection) error

	// GetConnection returns the connection for the unordered pair, or nil
	GetConnection(ctx context.Context, userA, userB string) (*Connection, error)

	// ListConnections returns all connections touching userID
	ListConnections(ctx context.Context, userID string) ([]Connection, error)

	// RemoveConnection deletes the connection for the pair and returns the
	// number of edges/records removed
	RemoveConnection(ctx context.Context, userA, userB string) (int, error)

	// UpdateConnectionType rewrites the type attributes of the pair's
	// connection and returns the number of edges/records updated
	UpdateConnectionType(ctx context.Context, userA, userB, newType, newSubType string) (int, error)
}

// TypeChangeStore persists type-change requests. Only the fallback backend
// implements it: the workflow must keep accepting proposals while the graph
// backend is down.
type TypeChangeStore interface {
	CreateTypeChange(ctx context.Context, req TypeChangeRequest) error
	GetTypeChange(ctx context.Context, requestID string) (*TypeChangeRequest, error)
	PendingTypeChangeExists(ctx context.Context, userA, userB string) (bool, error)
	ListPendingTypeChanges(ctx context.Context, toUserID string) ([]TypeChangeRequest, error)
	ListTypeChanges(ctx context.Context, userID string) ([]TypeChangeRequest, error)
	UpdateTypeChange(ctx context.Context, req TypeChangeRequest) error
}
