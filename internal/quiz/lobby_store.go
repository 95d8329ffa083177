// internal/quiz/lobby_store.go
package quiz

import (
	"math/rand"
	"sync"
)

const lobbyIDLength = 7

const lobbyIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// LobbyStore owns every active lobby. Nothing else holds a long-lived Lobby
// reference; other components keep only lobby ids and look them up here.
type LobbyStore struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
}

// NewLobbyStore returns an empty store.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*Lobby),
	}
}

// Add registers a lobby under a freshly generated id, retrying on collision
// until an unused id is found. The assigned id is written onto the lobby.
func (s *LobbyStore) Add(l *Lobby) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		id := randomLobbyID()
		if _, taken := s.lobbies[id]; taken {
			continue
		}
		l.ID = id
		s.lobbies[id] = l
		return id
	}
}

// Get looks up a lobby by id.
func (s *LobbyStore) Get(id string) (*Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[id]
	return l, ok
}

// Delete removes a lobby by id. Idempotent.
func (s *LobbyStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, id)
}

// All returns a snapshot of the active lobbies, used by the disconnect path
// which must scan every lobby a connection might appear in.
func (s *LobbyStore) All() []*Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		out = append(out, l)
	}
	return out
}

func randomLobbyID() string {
	b := make([]byte, lobbyIDLength)
	for i := range b {
		b[i] = lobbyIDAlphabet[rand.Intn(len(lobbyIDAlphabet))]
	}
	return string(b)
}
