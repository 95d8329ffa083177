// internal/quiz/connection.go
package quiz

import (
	"log"

	"github.com/google/uuid"
)

// Connection is one live client attached to the server. ID is a volatile
// per-socket identifier regenerated on every reconnect; SessionID is the
// stable identity carried by the client's session cookie and survives
// reconnects.
type Connection struct {
	ID        string
	SessionID uuid.UUID
	Cancel    func()
	Out       chan map[string]interface{}
}

// NewConnection allocates a connection with a fresh id and a buffered
// outbound channel drained by the transport's write pump.
func NewConnection(sessionID uuid.UUID) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Out:       make(chan map[string]interface{}, 16),
	}
}

// Write pushes a message onto the outbound channel without blocking. A full
// or closed channel drops the message; the write pump going away means the
// client is gone anyway.
func (c *Connection) Write(msg map[string]interface{}) {
	select {
	case c.Out <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Printf("quiz: dropped message type %q for connection %s", msgType, c.ID)
	}
}

// WriteError sends an error notification to this client only.
func (c *Connection) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}
