// internal/quiz/lobby_store_test.go
package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyStoreAddAssignsUniqueIDs(t *testing.T) {
	s := NewLobbyStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := s.Add(newTestLobby(newTestConn(), 1))
		require.Len(t, id, lobbyIDLength)
		assert.False(t, seen[id], "duplicate lobby id %s", id)
		seen[id] = true
	}
}

func TestLobbyStoreGetAndDelete(t *testing.T) {
	s := NewLobbyStore()
	l := newTestLobby(newTestConn(), 1)
	id := s.Add(l)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, l, got)

	s.Delete(id)
	_, ok = s.Get(id)
	assert.False(t, ok)

	// Idempotent.
	s.Delete(id)
}

func TestLobbyStoreAll(t *testing.T) {
	s := NewLobbyStore()
	s.Add(newTestLobby(newTestConn(), 1))
	s.Add(newTestLobby(newTestConn(), 1))

	assert.Len(t, s.All(), 2)
}
