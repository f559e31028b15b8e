// Package registry tracks which usernames are currently reachable and through
// what sink. It is the single source of truth for "is this user online" across
// the text transport and the RPC surface.
package registry

import (
	"sync"

	"github.com/pkg/errors"

	"chatd/internal/push"
)

var (
	ErrAlreadyActive    = errors.New("user already has an active session")
	ErrNotActive        = errors.New("user has no active session")
	ErrAlreadyStreaming = errors.New("user already has an update stream")
)

// A session moves through three states. Text-protocol clients register
// straight into Streaming because their connection is also their sink; RPC
// clients authenticate first and attach a sink when they open their stream.
//
//	Authenticated -> Streaming -> removed
type session struct {
	sink push.Sink // nil while Authenticated
}

// Registry is the mutex-guarded map of active sessions. Every check-then-act
// sequence (uniqueness check + insert, lookup + deliver, compare + remove)
// runs under one critical section.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func New() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Register claims the single active session for username. A nil sink leaves
// the session in the Authenticated state; a non-nil sink makes the user
// immediately reachable for push.
func (r *Registry) Register(username string, sink push.Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[username]; ok {
		return ErrAlreadyActive
	}
	r.sessions[username] = &session{sink: sink}
	return nil
}

// Attach moves an Authenticated session to Streaming.
func (r *Registry) Attach(username string, sink push.Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[username]
	if !ok {
		return ErrNotActive
	}
	if sess.sink != nil {
		return ErrAlreadyStreaming
	}
	sess.sink = sink
	return nil
}

// IsActive reports whether username has a session in any state.
func (r *Registry) IsActive(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[username]
	return ok
}

// Remove drops username's session unconditionally (explicit deletion).
func (r *Registry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, username)
}

// Release drops username's session only if it still belongs to sink. Used by
// disconnect and stream-end cleanup so a stale teardown cannot evict a
// session that was re-established in the meantime.
func (r *Registry) Release(username string, sink push.Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[username]; ok && sess.sink == sink {
		delete(r.sessions, username)
	}
}

// Sink returns username's delivery sink if they are reachable for push,
// i.e. the session is in the Streaming state.
func (r *Registry) Sink(username string) (push.Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[username]
	if !ok || sess.sink == nil {
		return nil, false
	}
	return sess.sink, true
}

// Reachable lists every username currently reachable for push.
func (r *Registry) Reachable() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]string, 0, len(r.sessions))
	for username, sess := range r.sessions {
		if sess.sink != nil {
			users = append(users, username)
		}
	}
	return users
}

// Count returns the number of active sessions in any state.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
