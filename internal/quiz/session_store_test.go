// internal/quiz/session_store_test.go
package quiz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreSaveAndRestore(t *testing.T) {
	s := NewSessionStore()
	sid := uuid.New()

	s.Save(sid, "abc1234", "alice", false)

	rec, ok := s.Restore(sid)
	require.True(t, ok)
	assert.Equal(t, SessionRecord{LobbyID: "abc1234", Username: "alice", IsHost: false}, rec)
}

func TestSessionStoreSaveOverwrites(t *testing.T) {
	s := NewSessionStore()
	sid := uuid.New()

	s.Save(sid, "abc1234", "alice", false)
	s.Save(sid, "xyz9876", "alice", true)

	rec, ok := s.Restore(sid)
	require.True(t, ok)
	assert.Equal(t, "xyz9876", rec.LobbyID)
	assert.True(t, rec.IsHost)
}

func TestSessionStoreClear(t *testing.T) {
	s := NewSessionStore()
	sid := uuid.New()

	s.Save(sid, "abc1234", "alice", false)
	s.Clear(sid)

	_, ok := s.Restore(sid)
	assert.False(t, ok)

	// Clearing an unknown session is fine.
	s.Clear(uuid.New())
}

func TestSessionStoreRestoreUnknown(t *testing.T) {
	s := NewSessionStore()
	_, ok := s.Restore(uuid.New())
	assert.False(t, ok)
}
