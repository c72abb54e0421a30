package game

import "sync"

// Registry maps live socket connections to participant identities.
// An entry exists only for the lifetime of its connection; registering
// does not join a room by itself.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Participant
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Participant)}
}

// Register stores p under the connection id, which also becomes the
// participant's id.
func (r *Registry) Register(id string, p Participant) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = id
	if p.CurrentSentence == "" {
		p.CurrentSentence = SentinelSentence
	}
	stored := &p
	r.conns[id] = stored
	return stored
}

func (r *Registry) Lookup(id string) (*Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.conns[id]
	if !ok {
		return nil, ErrUnknownConnection
	}
	return p, nil
}

// Remove deletes and returns the participant for id. A second remove for
// the same id reports ErrUnknownConnection; disconnect handlers treat
// that as an already-left no-op.
func (r *Registry) Remove(id string) (*Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.conns[id]
	if !ok {
		return nil, ErrUnknownConnection
	}
	delete(r.conns, id)
	return p, nil
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
