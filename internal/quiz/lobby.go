// internal/quiz/lobby.go
package quiz

import (
	"sync"

	"github.com/google/uuid"

	"github.com/M1chU02/TriviaQuiz/internal/trivia"
)

// MaxPrivatePlayers caps membership of a private lobby.
const MaxPrivatePlayers = 4

// Player is a participant in a lobby. ID is the stable session identity;
// the live connection (and with it the wire-visible connection id) is
// re-bound on reconnect.
type Player struct {
	ID       uuid.UUID
	Conn     *Connection
	Username string
	Score    int
}

// Result is one line of the final scoreboard.
type Result struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Lobby groups players for a single quiz run. Players are kept in join
// order; the first remaining player inherits the host role when the host
// leaves. All mutation happens under Mu, and every broadcast is built while
// the lock is held so observers only ever see post-mutation state.
//
// Invariant: whenever Players is non-empty, HostID is the ID of one of them.
// An empty lobby is deleted from its store by the caller of the mutation
// that emptied it.
type Lobby struct {
	Mu sync.Mutex

	ID        string
	IsPrivate bool
	HostID    uuid.UUID
	Players   []*Player

	Questions       []trivia.Question
	NumQuestions    int
	CategoryName    string
	CurrentQuestion int
	GameStarted     bool
}

// NewLobby builds a lobby in the pre-game phase with the creator as sole
// player and host. The id is assigned when the lobby is registered in a
// LobbyStore.
func NewLobby(creator *Connection, username string, isPrivate bool, questions []trivia.Question, categoryName string) *Lobby {
	return &Lobby{
		IsPrivate:    isPrivate,
		HostID:       creator.SessionID,
		Players:      []*Player{{ID: creator.SessionID, Conn: creator, Username: username}},
		Questions:    questions,
		NumQuestions: len(questions),
		CategoryName: categoryName,
	}
}

// Join appends a new player with score 0 and broadcasts the updated roster.
// The host does not change. Fails with ErrLobbyFull when a private lobby is
// at capacity.
func (l *Lobby) Join(conn *Connection, username string) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	if l.IsPrivate && len(l.Players) >= MaxPrivatePlayers {
		return ErrLobbyFull
	}

	l.Players = append(l.Players, &Player{ID: conn.SessionID, Conn: conn, Username: username})
	l.broadcastUnsafe(l.playerJoinedPayloadUnsafe())
	return nil
}

// Reconnect re-attaches a client that was dropped by the transport. A
// returning host is re-elected on its new connection and told the lobby's
// settings; anyone else rejoins as an ordinary player with a fresh score.
// Both branches broadcast playerJoined so peers see the updated roster.
func (l *Lobby) Reconnect(conn *Connection, username string, wasHost bool) {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	l.Players = append(l.Players, &Player{ID: conn.SessionID, Conn: conn, Username: username})

	if wasHost {
		l.HostID = conn.SessionID
		conn.Write(map[string]interface{}{
			"type":         "hostReconnected",
			"lobbyId":      l.ID,
			"numQuestions": l.NumQuestions,
			"categoryName": l.CategoryName,
		})
	} else {
		conn.Write(map[string]interface{}{
			"type":     "playerReconnected",
			"lobbyId":  l.ID,
			"username": username,
		})
	}

	l.broadcastUnsafe(l.playerJoinedPayloadUnsafe())
}

// Remove drops the player with the given stable id. When the removed player
// was host, the earliest-joined remaining player becomes the new host and is
// notified directly. Remaining members receive playerLeft. Returns true when
// the lobby is now empty and should be deleted by the caller.
func (l *Lobby) Remove(playerID uuid.UUID) bool {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	idx := -1
	for i, p := range l.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return len(l.Players) == 0
	}

	wasHost := l.HostID == playerID
	l.Players = append(l.Players[:idx], l.Players[idx+1:]...)

	if len(l.Players) == 0 {
		return true
	}

	if wasHost {
		next := l.Players[0]
		l.HostID = next.ID
		next.Conn.Write(map[string]interface{}{
			"type":    "hostAssigned",
			"lobbyId": l.ID,
		})
	}

	l.broadcastUnsafe(map[string]interface{}{
		"type":    "playerLeft",
		"players": l.playersUnsafe(),
	})
	return false
}

// HasPlayer reports whether the given stable id is currently a member.
func (l *Lobby) HasPlayer(playerID uuid.UUID) bool {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	for _, p := range l.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// HostConnID returns the connection id of the current host, or "" for an
// empty lobby.
func (l *Lobby) HostConnID() string {
	l.Mu.Lock()
	defer l.Mu.Unlock()
	return l.hostConnIDUnsafe()
}

func (l *Lobby) hostConnIDUnsafe() string {
	for _, p := range l.Players {
		if p.ID == l.HostID {
			return p.Conn.ID
		}
	}
	return ""
}

// playersUnsafe builds the wire roster: {id, username, score} in join order,
// where id is the player's current connection id.
func (l *Lobby) playersUnsafe() []map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(l.Players))
	for _, p := range l.Players {
		players = append(players, map[string]interface{}{
			"id":       p.Conn.ID,
			"username": p.Username,
			"score":    p.Score,
		})
	}
	return players
}

func (l *Lobby) playerJoinedPayloadUnsafe() map[string]interface{} {
	return map[string]interface{}{
		"type":    "playerJoined",
		"players": l.playersUnsafe(),
		"hostId":  l.hostConnIDUnsafe(),
	}
}

// broadcastUnsafe fans a message out to every member. Sends are
// non-blocking, so holding the lock here is safe.
func (l *Lobby) broadcastUnsafe(msg map[string]interface{}) {
	for _, p := range l.Players {
		p.Conn.Write(msg)
	}
}
