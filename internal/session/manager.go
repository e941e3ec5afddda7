// Package session owns the process-wide authentication state: the
// current identity, the current session (or its absence) and a
// readiness flag covering the initial restore probe. It is the single
// mutator of that state; everyone else reads or subscribes.
package session

import (
	"context"
	"sync"

	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/provider"
)

type Manager struct {
	auth provider.Auth

	mu      sync.Mutex
	ready   bool
	session *model.Session
	subs    map[int]func(*model.Session)
	nextSub int
	unsub   func()
}

func NewManager(auth provider.Auth) *Manager {
	return &Manager{auth: auth, subs: map[int]func(*model.Session){}}
}

// Start resolves any persisted session and registers for provider
// change notifications. Until Start returns, Ready reports false and
// consumers must render neither the authenticated nor the
// unauthenticated branch.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.unsub == nil {
		m.unsub = m.auth.OnSessionChange(m.replace)
	}
	m.mu.Unlock()

	sess, err := m.auth.GetSession(ctx)

	m.mu.Lock()
	m.session = sess
	m.ready = true
	m.mu.Unlock()
	return err
}

// Close unregisters the provider subscription. Notifications arriving
// after Close are dropped rather than applied to torn-down consumers.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Current returns the active session, or nil when unauthenticated.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Identity returns the active identity, or nil when unauthenticated.
func (m *Manager) Identity() *model.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	id := m.session.Identity
	return &id
}

// Subscribe registers fn to be called synchronously on every session
// change. The returned cancel must be called on consumer teardown.
func (m *Manager) Subscribe(fn func(*model.Session)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// replace applies a provider change notification. The notification is
// the single source of truth: state is replaced wholesale, never
// merged.
func (m *Manager) replace(sess *model.Session) {
	m.mu.Lock()
	if m.unsub == nil && m.ready {
		// Closed; ignore late notifications.
		m.mu.Unlock()
		return
	}
	m.session = sess
	fns := make([]func(*model.Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}
