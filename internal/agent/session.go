package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// SessionState is the confirmation coordinator's per-session state machine.
type SessionState int

const (
	// StateIdle means no confirmation cycle is open.
	StateIdle SessionState = iota

	// StateAwaitingConfirmation means pending invocations are waiting for
	// missing parameters from the user's next message.
	StateAwaitingConfirmation
)

// Session is the per-user conversational state that survives across turns:
// bounded history window, confirmation state, and pending invocations.
//
// turnMu serializes whole turns for one user; a second concurrent turn
// blocks until the first finishes rather than interleaving, which would
// corrupt the single-pending-confirmation invariant.
type Session struct {
	ID     string
	UserID string

	turnMu sync.Mutex

	mu         sync.Mutex
	state      SessionState
	pending    []*ToolInvocation
	history    []Message
	maxHistory int
	lastActive time.Time
}

// newSession creates a session with a bounded history window.
func newSession(userID string, maxHistory int) *Session {
	if maxHistory < 2 {
		maxHistory = 20
	}
	return &Session{
		ID:         "session-" + uuid.New().String(),
		UserID:     userID,
		maxHistory: maxHistory,
		lastActive: time.Now(),
	}
}

// State returns the confirmation state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending returns a copy of the pending invocations.
func (s *Session) Pending() []*ToolInvocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ToolInvocation, len(s.pending))
	copy(out, s.pending)
	return out
}

// setPending opens a confirmation cycle, replacing any previous pending set
// so at most one cycle is ever open.
func (s *Session) setPending(invs []*ToolInvocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = invs
	s.state = StateAwaitingConfirmation
	s.lastActive = time.Now()
}

// takePending closes the confirmation cycle and returns what was pending.
// The session is back to idle regardless of what the caller does next.
func (s *Session) takePending() []*ToolInvocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending
	s.pending = nil
	s.state = StateIdle
	s.lastActive = time.Now()
	return pending
}

// AppendTurn adds the user and assistant halves of a completed turn to the
// sliding history window, evicting the oldest entries beyond the bound.
func (s *Session) AppendTurn(userMsg, assistantMsg string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Message{Role: "user", Content: userMsg, At: now},
		Message{Role: "assistant", Content: assistantMsg, At: now},
	)
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append([]Message(nil), s.history[over:]...)
	}
	s.lastActive = now
}

// History returns a copy of the bounded history window in order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SessionStore owns all live sessions, keyed by user. Expired sessions are
// evicted lazily on access; no background timer is required.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	ttl        time.Duration
	maxHistory int
}

// NewSessionStore creates a session store with the given idle TTL and
// per-session history bound.
func NewSessionStore(ttl time.Duration, maxHistory int) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		maxHistory: maxHistory,
	}
}

// Get returns the live session for a user, creating one if absent or if the
// previous session expired.
func (ss *SessionStore) Get(userID string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.evictExpiredLocked()

	if sess, ok := ss.sessions[userID]; ok {
		return sess
	}
	sess := newSession(userID, ss.maxHistory)
	ss.sessions[userID] = sess
	logging.SessionDebug("Created session %s for user %s", sess.ID, userID)
	return sess
}

// Len returns the number of live sessions.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

func (ss *SessionStore) evictExpiredLocked() {
	cutoff := time.Now().Add(-ss.ttl)
	for userID, sess := range ss.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(ss.sessions, userID)
			logging.SessionDebug("Evicted expired session %s for user %s", sess.ID, userID)
		}
	}
}
