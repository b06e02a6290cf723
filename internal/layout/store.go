package layout

import (
	"sync"

	"go.uber.org/zap"
)

// State is the full column layout: one ColumnState per column. It is
// persisted and broadcast as a whole object; there is no field-level
// merge, so concurrent writers are last-writer-wins by design.
type State map[ColumnID]ColumnState

// DefaultState returns the initial layout: every column normal.
func DefaultState() State {
	return State{
		ColumnCustomer:     StateNormal,
		ColumnEmbedded:     StateNormal,
		ColumnSpaceCopilot: StateNormal,
		ColumnKMS:          StateNormal,
	}
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two states hold the same column states.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if other[k] != v {
			return false
		}
	}
	return true
}

// Maximized returns the maximized column, if any.
func (s State) Maximized() (ColumnID, bool) {
	for _, id := range Columns {
		if s[id] == StateMaximized {
			return id, true
		}
	}
	return "", false
}

// Authorizer gates layout management. Mutations without permission are
// silent no-ops; the UI hides the controls rather than raising errors.
type Authorizer interface {
	CanManageLayout() bool
}

// StaticAuthorizer is a fixed permission grant.
type StaticAuthorizer bool

// CanManageLayout implements Authorizer.
func (a StaticAuthorizer) CanManageLayout() bool { return bool(a) }

// Store owns the persisted per-role column layout. Every mutation
// replaces the whole state object, persists it synchronously under the
// role's storage key, and broadcasts the new state on the bus.
type Store struct {
	mu         sync.Mutex
	storageKey string
	role       string
	state      State
	storage    Storage
	bus        *Bus
	auth       Authorizer
	logger     *zap.Logger
}

// NewStore loads the role's persisted layout (default: all normal) and
// returns a store bound to that role.
func NewStore(storageKey, role string, storage Storage, bus *Bus, auth Authorizer, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storageKey: storageKey,
		role:       role,
		storage:    storage,
		bus:        bus,
		auth:       auth,
		logger:     logger,
	}
	st, ok, err := storage.Load(s.Key())
	if err != nil {
		return nil, err
	}
	if !ok {
		st = DefaultState()
	}
	s.state = normalize(st)
	return s, nil
}

// Key returns the persistence key for this store's role.
func (s *Store) Key() string {
	return s.storageKey + "-" + s.role
}

// Role returns the operator role this store is bound to.
func (s *Store) Role() string { return s.role }

// State returns a copy of the current layout.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// UpdateColumn sets one column's state. Setting a column to maximized
// atomically collapses all other columns. Without layout-management
// permission this is a silent no-op. Re-setting the current state is
// valid and still persists (a no-semantic-change write).
func (s *Store) UpdateColumn(id ColumnID, st ColumnState) {
	if !s.auth.CanManageLayout() {
		s.logger.Debug("layout update denied", zap.String("column", string(id)))
		return
	}
	s.mu.Lock()
	next := s.state.Clone()
	next[id] = st
	if st == StateMaximized {
		for _, other := range Columns {
			if other != id {
				next[other] = StateCollapsed
			}
		}
	}
	s.commitLocked(next)
	s.mu.Unlock()
}

// ApplyLayout merges a partial layout over the current state in one
// step. Used for presets and bulk changes; permission-gated identically
// to UpdateColumn. If the partial state maximizes a column, the other
// columns collapse.
func (s *Store) ApplyLayout(partial State) {
	if !s.auth.CanManageLayout() {
		s.logger.Debug("layout apply denied")
		return
	}
	s.mu.Lock()
	next := s.state.Clone()
	for k, v := range partial {
		next[k] = v
	}
	// A maximize in the partial wins over a column that was already
	// maximized before the merge; otherwise normalize's canonical-order
	// tie-break would keep the old column on top.
	for _, id := range Columns {
		if partial[id] == StateMaximized {
			for _, other := range Columns {
				if other != id {
					next[other] = StateCollapsed
				}
			}
			break
		}
	}
	s.commitLocked(normalize(next))
	s.mu.Unlock()
}

// ResetLayout restores the role's layout to the default.
func (s *Store) ResetLayout() {
	if !s.auth.CanManageLayout() {
		s.logger.Debug("layout reset denied")
		return
	}
	s.mu.Lock()
	s.commitLocked(DefaultState())
	s.mu.Unlock()
}

// commitLocked replaces the state, persists it and broadcasts. Persist
// failures are logged, not surfaced; the in-memory state stays
// authoritative for this context.
func (s *Store) commitLocked(next State) {
	s.state = next
	if err := s.storage.Save(s.Key(), next); err != nil {
		s.logger.Warn("layout persist failed", zap.String("key", s.Key()), zap.Error(err))
	}
	if s.bus != nil {
		s.bus.Publish(Change{Role: s.role, State: next.Clone()})
	}
}

// ApplyExternal converges on a state written by another execution
// context (another tab or process). It is not permission-gated: it is
// synchronization, not a mutation, and is not re-persisted. The change
// is rebroadcast so local observers converge too.
func (s *Store) ApplyExternal(key string, st State) {
	if key != s.Key() {
		return
	}
	s.mu.Lock()
	if s.state.Equal(st) {
		s.mu.Unlock()
		return
	}
	s.state = normalize(st.Clone())
	applied := s.state.Clone()
	s.mu.Unlock()

	s.logger.Debug("layout converged to external write", zap.String("key", key))
	if s.bus != nil {
		s.bus.Publish(Change{Role: s.role, State: applied, External: true})
	}
}

// normalize fills missing columns with the default and enforces the
// at-most-one-maximized invariant, favoring the first maximized column
// in canonical order.
func normalize(st State) State {
	out := DefaultState()
	for k, v := range st {
		switch v {
		case StateNormal, StateCollapsed, StateMaximized:
			out[k] = v
		}
	}
	var winner ColumnID
	for _, id := range Columns {
		if out[id] == StateMaximized {
			winner = id
			break
		}
	}
	if winner != "" {
		for _, id := range Columns {
			if id != winner {
				out[id] = StateCollapsed
			}
		}
	}
	return out
}
