// internal/quiz/session_store.go
package quiz

import (
	"sync"

	"github.com/google/uuid"
)

// SessionRecord is a player's last known lobby role, keyed by the stable
// session id from the client's cookie. It only references a lobby by id and
// must tolerate that lobby no longer existing.
type SessionRecord struct {
	LobbyID  string
	Username string
	IsHost   bool
}

// SessionStore maps session ids to their continuity records. It owns no
// expiry logic; record lifetime is bounded by the session cookie's own
// lifetime on the client side.
type SessionStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]SessionRecord
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		records: make(map[uuid.UUID]SessionRecord),
	}
}

// Save upserts the record for a session, written whenever a player joins or
// creates a lobby.
func (s *SessionStore) Save(sessionID uuid.UUID, lobbyID, username string, isHost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = SessionRecord{LobbyID: lobbyID, Username: username, IsHost: isHost}
}

// Restore looks up the record for a session, read once per new connection to
// attempt an automatic rejoin.
func (s *SessionStore) Restore(sessionID uuid.UUID) (SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	return rec, ok
}

// Clear removes the record for a session on explicit leave.
func (s *SessionStore) Clear(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
}
