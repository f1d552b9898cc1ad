// Package bot routes Telegram updates for the support desk.
//
// This file implements the per-user conversation state. A Session is a small
// typed value instead of loose flags so a handler can only ever observe one
// coherent state, and every transition goes through the store under a lock.
// State is process local and lost on restart; users simply start over.
package bot

import "sync"

// State enumerates what the bot expects from a user next.
type State int

const (
	// StateIdle means no conversation flow is in progress.
	StateIdle State = iota
	// StateAwaitingIssue means the next text message becomes a new ticket.
	StateAwaitingIssue
	// StateAwaitingSolution means the next text message resolves RequestID.
	StateAwaitingSolution
)

// Session is the conversation state for one Telegram user.
type Session struct {
	State     State
	RequestID int64 // set only for StateAwaitingSolution
}

// SessionStore holds sessions keyed by Telegram user id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

// Get returns the session for userID, defaulting to idle.
func (s *SessionStore) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// AwaitIssue marks userID as composing a new ticket.
func (s *SessionStore) AwaitIssue(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = Session{State: StateAwaitingIssue}
}

// AwaitSolution marks userID as composing the solution for requestID.
func (s *SessionStore) AwaitSolution(userID, requestID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = Session{State: StateAwaitingSolution, RequestID: requestID}
}

// Clear resets userID back to idle.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
