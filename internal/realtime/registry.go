package realtime

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrAlreadyRegistered is returned when a connection is registered a
// second time. A connection belongs to exactly one company group for its
// entire lifetime.
var ErrAlreadyRegistered = errors.New("connection already registered")

// Registry is the in-process table of live connections, grouped by
// company. It is safe for concurrent use; the lock is never held across
// connection I/O.
type Registry struct {
	mu sync.Mutex
	// groups maps company ID to the set of its live connections.
	groups map[uuid.UUID]map[*Conn]struct{}
	// membership is the reverse index used for unregistration.
	membership map[*Conn]uuid.UUID
	logger     *slog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		groups:     make(map[uuid.UUID]map[*Conn]struct{}),
		membership: make(map[*Conn]uuid.UUID),
		logger:     logger.With("component", "realtime_registry"),
	}
}

// Register adds the connection to its company's group. Registering the
// same connection twice returns ErrAlreadyRegistered.
func (r *Registry) Register(conn *Conn) error {
	companyID := conn.Identity().CompanyID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.membership[conn]; exists {
		return ErrAlreadyRegistered
	}

	group, exists := r.groups[companyID]
	if !exists {
		group = make(map[*Conn]struct{})
		r.groups[companyID] = group
	}
	group[conn] = struct{}{}
	r.membership[conn] = companyID

	r.logger.Debug("connection registered",
		"company_id", companyID,
		"user_id", conn.Identity().UserID,
		"group_size", len(group))
	return nil
}

// Unregister removes the connection from its group. It is a no-op if the
// connection was never registered or has already been removed, because
// disconnect paths may race with explicit cleanup.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	companyID, exists := r.membership[conn]
	if !exists {
		return
	}
	delete(r.membership, conn)

	group := r.groups[companyID]
	delete(group, conn)
	if len(group) == 0 {
		delete(r.groups, companyID)
	}

	r.logger.Debug("connection unregistered",
		"company_id", companyID,
		"user_id", conn.Identity().UserID,
		"group_size", len(group))
}

// MembersOf returns a snapshot of the company's current connections.
// The snapshot does not track later registry mutations.
func (r *Registry) MembersOf(companyID uuid.UUID) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.groups[companyID]
	members := make([]*Conn, 0, len(group))
	for conn := range group {
		members = append(members, conn)
	}
	return members
}

// Count returns the number of live connections for the company.
func (r *Registry) Count(companyID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[companyID])
}
