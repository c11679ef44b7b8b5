package runtime

import (
	"sync"
	"talky/contract"
	"talky/domain"
	"talky/errors"

	"github.com/samber/lo"
)

type entry struct {
	identity domain.Identity
	sink     contract.EventSink
}

// Registry is the authoritative mapping of live sessions to identities.
// Every entry matches exactly one open transport connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]entry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]entry)}
}

// Register inserts a new session. A handle already present is an invariant
// violation reported as ErrSessionAlreadyRegistered.
func (r *Registry) Register(id domain.SessionID, identity domain.Identity, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return errors.ErrSessionAlreadyRegistered
	}
	if identity.State == nil {
		identity.State = domain.Status{}
	}
	r.sessions[id] = entry{identity: identity, sink: sink}
	return nil
}

// Remove deletes the session if present and reports whether it was.
// Calling it twice for the same handle is harmless.
func (r *Registry) Remove(id domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// LookupByUsername returns the first session holding that display name.
// With duplicate names the match follows map iteration order, which is unspecified.
func (r *Registry) LookupByUsername(username string) (domain.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := lo.FindKeyBy(r.sessions, func(_ domain.SessionID, e entry) bool {
		return e.identity.Username == username
	})
	return id, ok
}

func (r *Registry) Identity(id domain.SessionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	return e.identity.Clone(), true
}

func (r *Registry) Sink(id domain.SessionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	return e.sink, ok
}

// Sinks copies the current send channels so fan-out runs without the lock.
func (r *Registry) Sinks() map[domain.SessionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapValues(r.sessions, func(e entry, _ domain.SessionID) contract.EventSink {
		return e.sink
	})
}

// Snapshot is a read-only full copy of the roster.
func (r *Registry) Snapshot() map[domain.SessionID]domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapValues(r.sessions, func(e entry, _ domain.SessionID) domain.Identity {
		return e.identity.Clone()
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
