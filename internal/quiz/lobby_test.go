// internal/quiz/lobby_test.go
package quiz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M1chU02/TriviaQuiz/internal/trivia"
)

func newTestConn() *Connection {
	return NewConnection(uuid.New())
}

// drainEvents empties a connection's outbound channel.
func drainEvents(c *Connection) []map[string]interface{} {
	var events []map[string]interface{}
	for {
		select {
		case ev := <-c.Out:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// lastEventOfType returns the most recent buffered event with the given type.
func lastEventOfType(c *Connection, eventType string) map[string]interface{} {
	var found map[string]interface{}
	for _, ev := range drainEvents(c) {
		if ev["type"] == eventType {
			found = ev
		}
	}
	return found
}

func testQuestions(n int) []trivia.Question {
	qs := make([]trivia.Question, n)
	for i := range qs {
		qs[i] = trivia.Question{
			Category:         "General Knowledge",
			Type:             "boolean",
			Difficulty:       "medium",
			Question:         "Question?",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		}
	}
	return qs
}

func newTestLobby(host *Connection, n int) *Lobby {
	l := NewLobby(host, "host", false, testQuestions(n), "General Knowledge")
	l.ID = "testlob"
	return l
}

func TestNewLobbyCreatorIsHost(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	require.Len(t, l.Players, 1)
	assert.Equal(t, host.SessionID, l.HostID)
	assert.Equal(t, host.ID, l.HostConnID())
	assert.Equal(t, 2, l.NumQuestions)
	assert.False(t, l.GameStarted)
}

func TestJoinAppendsInOrder(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	a, b := newTestConn(), newTestConn()
	require.NoError(t, l.Join(a, "alice"))
	require.NoError(t, l.Join(b, "bob"))

	require.Len(t, l.Players, 3)
	assert.Equal(t, "alice", l.Players[1].Username)
	assert.Equal(t, "bob", l.Players[2].Username)
	assert.Equal(t, host.SessionID, l.HostID, "join must not change host")

	// Everyone, including the new player, sees the post-join roster.
	ev := lastEventOfType(b, "playerJoined")
	require.NotNil(t, ev)
	assert.Equal(t, host.ID, ev["hostId"])
	assert.Len(t, ev["players"], 3)
}

func TestJoinPrivateLobbyFull(t *testing.T) {
	host := newTestConn()
	l := NewLobby(host, "host", true, testQuestions(1), "General Knowledge")
	for i := 0; i < MaxPrivatePlayers-1; i++ {
		require.NoError(t, l.Join(newTestConn(), "filler"))
	}
	require.Len(t, l.Players, MaxPrivatePlayers)

	late := newTestConn()
	err := l.Join(late, "late")
	assert.ErrorIs(t, err, ErrLobbyFull)
	assert.Len(t, l.Players, MaxPrivatePlayers, "failed join must not mutate the roster")
	assert.Empty(t, drainEvents(late), "rejected client gets no broadcast")
}

func TestHostMigrationPicksEarliestJoined(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	a, b := newTestConn(), newTestConn()
	require.NoError(t, l.Join(a, "alice"))
	require.NoError(t, l.Join(b, "bob"))
	drainEvents(a)
	drainEvents(b)

	empty := l.Remove(host.SessionID)
	assert.False(t, empty)
	assert.Equal(t, a.SessionID, l.HostID, "earliest-joined remaining player becomes host")
	assert.Equal(t, a.ID, l.HostConnID())

	require.NotNil(t, lastEventOfType(a, "hostAssigned"))

	var bSawHostAssigned, bSawPlayerLeft bool
	for _, ev := range drainEvents(b) {
		switch ev["type"] {
		case "hostAssigned":
			bSawHostAssigned = true
		case "playerLeft":
			bSawPlayerLeft = true
		}
	}
	assert.False(t, bSawHostAssigned, "only the new host is notified")
	assert.True(t, bSawPlayerLeft)
}

func TestHostAlwaysAMember(t *testing.T) {
	// Property from the membership invariant: across any sequence of joins
	// and leaves, a non-empty lobby's host is one of its players.
	host := newTestConn()
	l := newTestLobby(host, 2)

	conns := []*Connection{host}
	for i := 0; i < 5; i++ {
		c := newTestConn()
		require.NoError(t, l.Join(c, "p"))
		conns = append(conns, c)
	}

	for _, c := range conns {
		l.Remove(c.SessionID)
		if len(l.Players) == 0 {
			break
		}
		assert.True(t, l.HasPlayer(l.HostID), "host %s not in players", l.HostID)
	}
}

func TestRemoveLastPlayerReportsEmpty(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	assert.True(t, l.Remove(host.SessionID))
	assert.Empty(t, l.Players)
}

func TestRemoveUnknownPlayerIsNoop(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	assert.False(t, l.Remove(uuid.New()))
	assert.Len(t, l.Players, 1)
}

func TestReconnectHostRebindsConnection(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 3)

	a := newTestConn()
	require.NoError(t, l.Join(a, "alice"))
	drainEvents(a)

	// Transport drop: the host's player record goes away, alice inherits.
	l.Remove(host.SessionID)
	require.Equal(t, a.SessionID, l.HostID)
	drainEvents(a)

	// Same session, fresh connection.
	rejoined := NewConnection(host.SessionID)
	l.Reconnect(rejoined, "host", true)

	assert.Equal(t, rejoined.SessionID, l.HostID)
	assert.Equal(t, rejoined.ID, l.HostConnID(), "host identity is bound to the new connection id")

	ev := lastEventOfType(rejoined, "hostReconnected")
	require.NotNil(t, ev)
	assert.Equal(t, 3, ev["numQuestions"])
	assert.Equal(t, "General Knowledge", ev["categoryName"])

	// Peers see the updated membership.
	require.NotNil(t, lastEventOfType(a, "playerJoined"))
}

func TestReconnectPlayerRejoinsAsOrdinaryMember(t *testing.T) {
	host := newTestConn()
	l := newTestLobby(host, 2)

	a := newTestConn()
	require.NoError(t, l.Join(a, "alice"))
	l.Remove(a.SessionID)
	drainEvents(host)

	rejoined := NewConnection(a.SessionID)
	l.Reconnect(rejoined, "alice", false)

	assert.Equal(t, host.SessionID, l.HostID, "ordinary reconnect must not touch the host")
	require.NotNil(t, lastEventOfType(rejoined, "playerReconnected"))
	require.NotNil(t, lastEventOfType(host, "playerJoined"))
	assert.Equal(t, 0, l.Players[len(l.Players)-1].Score, "score starts fresh after reconnect")
}
