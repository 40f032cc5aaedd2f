package typechange

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialmesh/backend/internal/store"
	pkgerrors "socialmesh/backend/pkg/errors"
)

// pairStore is a minimal store.Store holding one shared connection map; only
// the methods the workflow touches matter, the rest satisfy the interface.
type pairStore struct {
	mu          sync.Mutex
	conns       map[string]*store.Connection
	typeUpdates int
}

func pairKey(a, b string) string {
	x, y := store.NormalizePair(a, b)
	return x + "|" + y
}

func newPairStore() *pairStore {
	return &pairStore{conns: map[string]*store.Connection{}}
}

func (p *pairStore) addConnection(a, b, connType string) {
	x, y := store.NormalizePair(a, b)
	p.conns[pairKey(a, b)] = &store.Connection{UserA: x, UserB: y, Type: connType, Since: time.Now().UTC()}
}

func (p *pairStore) Name() string                                                         { return "pair" }
func (p *pairStore) EnsureUsers(ctx context.Context, userIDs ...string) error             { return nil }
func (p *pairStore) CreateRequest(ctx context.Context, req store.ConnectionRequest) error { return nil }
func (p *pairStore) PendingRequestExists(ctx context.Context, a, b string) (bool, error) {
	return false, nil
}
func (p *pairStore) GetRequestForRecipient(ctx context.Context, id, to string) (*store.ConnectionRequest, error) {
	return nil, nil
}
func (p *pairStore) ListPendingRequests(ctx context.Context, to string) ([]store.ConnectionRequest, error) {
	return nil, nil
}
func (p *pairStore) DeleteRequest(ctx context.Context, id string) error { return nil }
func (p *pairStore) CreateConnection(ctx context.Context, conn store.Connection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[pairKey(conn.UserA, conn.UserB)] = &conn
	return nil
}
func (p *pairStore) GetConnection(ctx context.Context, a, b string) (*store.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.conns[pairKey(a, b)]; ok {
		c := *conn
		return &c, nil
	}
	return nil, nil
}
func (p *pairStore) ListConnections(ctx context.Context, userID string) ([]store.Connection, error) {
	return nil, nil
}
func (p *pairStore) RemoveConnection(ctx context.Context, a, b string) (int, error) { return 0, nil }
func (p *pairStore) UpdateConnectionType(ctx context.Context, a, b, newType, newSubType string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.conns[pairKey(a, b)]; ok {
		conn.Type = newType
		conn.SubType = newSubType
		p.typeUpdates++
		return 1, nil
	}
	return 0, nil
}

// memTypeChanges is an in-memory store.TypeChangeStore
type memTypeChanges struct {
	mu       sync.Mutex
	requests []store.TypeChangeRequest
}

func (m *memTypeChanges) CreateTypeChange(ctx context.Context, req store.TypeChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

func (m *memTypeChanges) GetTypeChange(ctx context.Context, requestID string) (*store.TypeChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].RequestID == requestID {
			req := m.requests[i]
			return &req, nil
		}
	}
	return nil, nil
}

func (m *memTypeChanges) PendingTypeChangeExists(ctx context.Context, userA, userB string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a1, b1 := store.NormalizePair(userA, userB)
	for _, req := range m.requests {
		a2, b2 := store.NormalizePair(req.FromUserID, req.ToUserID)
		if req.Status == store.TypeChangeStatusPending && a1 == a2 && b1 == b2 {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTypeChanges) ListPendingTypeChanges(ctx context.Context, toUserID string) ([]store.TypeChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := []store.TypeChangeRequest{}
	for _, req := range m.requests {
		if req.Status == store.TypeChangeStatusPending && req.ToUserID == toUserID {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

func (m *memTypeChanges) ListTypeChanges(ctx context.Context, userID string) ([]store.TypeChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := []store.TypeChangeRequest{}
	for _, req := range m.requests {
		if req.FromUserID == userID || req.ToUserID == userID {
			history = append(history, req)
		}
	}
	return history, nil
}

func (m *memTypeChanges) UpdateTypeChange(ctx context.Context, req store.TypeChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].RequestID == req.RequestID {
			m.requests[i] = req
			break
		}
	}
	return nil
}

type staticChecker bool

func (c staticChecker) IsHealthy(ctx context.Context) bool { return bool(c) }

func newTestWorkflow(healthy bool) (*Workflow, *pairStore, *pairStore) {
	graph := newPairStore()
	fallback := newPairStore()
	selector := store.NewSelector(staticChecker(healthy), graph, fallback)
	return NewWorkflow(&memTypeChanges{}, selector), graph, fallback
}

func TestPropose_RequiresConnection(t *testing.T) {
	ctx := context.Background()
	wf, _, _ := newTestWorkflow(true)

	if _, err := wf.Propose(ctx, "alice", "bob", "Social", ""); !pkgerrors.IsNotConnected(err) {
		t.Errorf("Expected NotConnected, got %v", err)
	}
}

func TestPropose_DuplicatePendingFails(t *testing.T) {
	ctx := context.Background()
	wf, graph, _ := newTestWorkflow(true)
	graph.addConnection("alice", "bob", "Work")

	if _, err := wf.Propose(ctx, "alice", "bob", "Social", ""); err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	// Either direction blocks a second proposal for the pair
	if _, err := wf.Propose(ctx, "bob", "alice", "Family", ""); !pkgerrors.IsTypeChangePending(err) {
		t.Errorf("Expected TypeChangePending, got %v", err)
	}
}

func TestPropose_SnapshotsCurrentType(t *testing.T) {
	ctx := context.Background()
	wf, graph, _ := newTestWorkflow(true)
	graph.addConnection("alice", "bob", "Work")

	requestID, err := wf.Propose(ctx, "alice", "bob", "Social", "Gaming")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	pending := wf.ListPending(ctx, "bob")
	if len(pending) != 1 {
		t.Fatalf("Expected one pending type change for bob, got %d", len(pending))
	}
	req := pending[0]
	if req.RequestID != requestID {
		t.Errorf("Expected request id %s, got %s", requestID, req.RequestID)
	}
	if req.CurrentType != "Work" {
		t.Errorf("Expected snapshot of current type Work, got %s", req.CurrentType)
	}
	if req.ProposedType != "Social" || req.ProposedSubType != "Gaming" {
		t.Errorf("Expected Social/Gaming proposal, got %s/%s", req.ProposedType, req.ProposedSubType)
	}

	// Awaiting bob's decision, not alice's
	if mine := wf.ListPending(ctx, "alice"); len(mine) != 0 {
		t.Errorf("Expected no pending decisions for the proposer, got %d", len(mine))
	}
}

func TestRespond_OnlyRecipient(t *testing.T) {
	ctx := context.Background()
	wf, graph, _ := newTestWorkflow(true)
	graph.addConnection("alice", "bob", "Work")

	requestID, err := wf.Propose(ctx, "alice", "bob", "Social", "")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	if _, err := wf.Respond(ctx, requestID, "alice", ActionApprove); !pkgerrors.IsUnauthorized(err) {
		t.Errorf("Expected Unauthorized for proposer, got %v", err)
	}
	if _, err := wf.Respond(ctx, requestID, "mallory", ActionApprove); !pkgerrors.IsUnauthorized(err) {
		t.Errorf("Expected Unauthorized for third party, got %v", err)
	}
	if _, err := wf.Respond(ctx, "no-such-id", "bob", ActionApprove); !pkgerrors.IsNotFound(err) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestRespond_TerminalOnceResolved(t *testing.T) {
	ctx := context.Background()
	wf, graph, _ := newTestWorkflow(true)
	graph.addConnection("alice", "bob", "Work")

	requestID, err := wf.Propose(ctx, "alice", "bob", "Social", "")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	resolved, err := wf.Respond(ctx, requestID, "bob", ActionReject)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if resolved.Status != store.TypeChangeStatusRejected {
		t.Errorf("Expected rejected status, got %s", resolved.Status)
	}
	if resolved.RespondedAt == nil {
		t.Error("Expected responded_at to be stamped")
	}

	if _, err := wf.Respond(ctx, requestID, "bob", ActionApprove); !pkgerrors.IsAlreadyProcessed(err) {
		t.Errorf("Expected AlreadyProcessed, got %v", err)
	}

	// The audit record survives for both parties
	for _, user := range []string{"alice", "bob"} {
		history := wf.ListAll(ctx, user)
		if len(history) != 1 || history[0].Status != store.TypeChangeStatusRejected {
			t.Errorf("Expected rejected audit record for %s, got %v", user, history)
		}
	}
}

func TestApprove_WritesBothBackendsWhenHealthy(t *testing.T) {
	ctx := context.Background()
	wf, graph, fallback := newTestWorkflow(true)
	graph.addConnection("alice", "bob", "Work")
	fallback.addConnection("alice", "bob", "Work")

	requestID, err := wf.Propose(ctx, "alice", "bob", "Social", "Gaming")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	resolved, err := wf.Respond(ctx, requestID, "bob", ActionApprove)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if resolved.Status != store.TypeChangeStatusApproved {
		t.Errorf("Expected approved status, got %s", resolved.Status)
	}

	for name, st := range map[string]*pairStore{"graph": graph, "fallback": fallback} {
		conn, err := st.GetConnection(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("GetConnection failed: %v", err)
		}
		if conn.Type != "Social" || conn.SubType != "Gaming" {
			t.Errorf("Expected %s store updated to Social/Gaming, got %s/%s", name, conn.Type, conn.SubType)
		}
	}
}

func TestApprove_SkipsGraphWhenUnhealthy(t *testing.T) {
	ctx := context.Background()
	wf, graph, fallback := newTestWorkflow(false)
	graph.addConnection("alice", "bob", "Work")
	fallback.addConnection("alice", "bob", "Work")

	requestID, err := wf.Propose(ctx, "alice", "bob", "Social", "")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if _, err := wf.Respond(ctx, requestID, "bob", ActionApprove); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	fallbackConn, _ := fallback.GetConnection(ctx, "alice", "bob")
	if fallbackConn.Type != "Social" {
		t.Errorf("Expected fallback updated, got %s", fallbackConn.Type)
	}

	// Best-effort dual write: the graph store keeps the stale type until the
	// next health transition
	graphConn, _ := graph.GetConnection(ctx, "alice", "bob")
	if graphConn.Type != "Work" {
		t.Errorf("Expected graph store untouched during outage, got %s", graphConn.Type)
	}
	if graph.typeUpdates != 0 {
		t.Errorf("Expected no graph type updates, got %d", graph.typeUpdates)
	}
}
