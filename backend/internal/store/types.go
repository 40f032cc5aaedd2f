package store

import "time"

// RequestStatus is the lifecycle state of a connection request
type RequestStatus string

const (
	// RequestStatusPending is the only status a persisted request can hold;
	// accept and reject both delete the record
	RequestStatusPending RequestStatus = "PENDING"
)

// TypeChangeStatus is the lifecycle state of a type-change request
type TypeChangeStatus string

const (
	TypeChangeStatusPending  TypeChangeStatus = "pending"
	TypeChangeStatusApproved TypeChangeStatus = "approved"
	TypeChangeStatusRejected TypeChangeStatus = "rejected"
)

// ConnectionRequest is a directed, unresolved proposal to establish a connection
type ConnectionRequest struct {
	RequestID  string        `json:"request_id"`
	FromUserID string        `json:"from_user_id"`
	ToUserID   string        `json:"to_user_id"`
	Type       string        `json:"type"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Connection is a symmetric, typed relationship between two users.
// At most one connection exists per unordered pair.
type Connection struct {
	UserA   string    `json:"user_a"`
	UserB   string    `json:"user_b"`
	Type    string    `json:"type"`
	SubType string    `json:"sub_type,omitempty"`
	Since   time.Time `json:"since"`
}

// Counterpart returns the other endpoint of the connection relative to userID
func (c Connection) Counterpart(userID string) string {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// TypeChangeRequest is a directed proposal to alter an existing connection's
// type. It is never deleted; resolved requests remain as audit records.
type TypeChangeRequest struct {
	RequestID       string           `json:"request_id"`
	FromUserID      string           `json:"from_user_id"`
	ToUserID        string           `json:"to_user_id"`
	CurrentType     string           `json:"current_type"`
	ProposedType    string           `json:"proposed_type"`
	ProposedSubType string           `json:"proposed_sub_type,omitempty"`
	Status          TypeChangeStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`
}

// NormalizePair returns the unordered pair (a, b) in canonical order so that
// both backends key a symmetric connection identically.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
