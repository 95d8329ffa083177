// internal/handlers/quiz_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/M1chU02/TriviaQuiz/internal/quiz"
)

// clientMessage is the envelope for every inbound command. Fields are a
// union across command types; each handler reads only the ones it needs.
type clientMessage struct {
	Type string `json:"type"`

	Username     string `json:"username,omitempty"`
	IsPrivate    bool   `json:"isPrivate,omitempty"`
	NumQuestions int    `json:"numQuestions,omitempty"`
	Category     int    `json:"category,omitempty"`

	LobbyID string `json:"lobbyId,omitempty"`
	Answer  string `json:"answer,omitempty"`

	// QuestionIndex echoes the index delivered with quizStarted/nextQuestion
	// so stale answers can be dropped. Clients that omit it target the
	// current question.
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

// WSHandler upgrades the HTTP connection, resolves the session cookie, runs
// the reconnection handshake, and pumps messages until the client goes away.
// The read loop exiting for any reason runs the standard disconnect path.
func WSHandler(logger *logrus.Logger, srv *QuizServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The cookie must be resolved before Accept hijacks the response.
		sessionID, err := EnsureSession(w, r)
		if err != nil {
			logger.Warnf("Session handshake failed for %s: %v", r.RemoteAddr, err)
			http.Error(w, "session handshake failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx, cancel := context.WithCancel(r.Context())
		conn := quiz.NewConnection(sessionID)
		conn.Cancel = cancel

		logger.Infof("Connection %s (session %s) established from %s", conn.ID, sessionID, r.RemoteAddr)

		// Attempt session-based rejoin before any commands arrive.
		srv.HandleConnect(conn)

		go writePump(ctx, c, conn, logger)

		readPump(ctx, c, srv, conn, logger)

		// Reconcile lobby state now that the connection is gone; peers get
		// playerLeft/hostAssigned, the departed client gets nothing.
		srv.Disconnect(conn)
		cancel()
		logger.Infof("Connection %s cleaned up", conn.ID)
	}
}

// readPump decodes inbound frames and routes them until the connection
// closes or the context is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, srv *QuizServer, conn *quiz.Connection, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("Connection %s closed normally", conn.ID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("Read error on connection %s: %v", conn.ID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid json on connection %s: %v", conn.ID, err)
			conn.WriteError("Invalid JSON format")
			continue
		}

		handleMessage(ctx, srv, conn, msg, logger)
	}
}

// handleMessage dispatches one decoded client command.
func handleMessage(ctx context.Context, srv *QuizServer, conn *quiz.Connection, msg clientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "getCategories":
		srv.GetCategories(conn)
	case "createLobby":
		srv.CreateLobby(ctx, conn, msg.Username, msg.IsPrivate, msg.NumQuestions, msg.Category)
	case "joinLobby":
		srv.JoinLobby(conn, msg.LobbyID, msg.Username)
	case "leaveLobby":
		srv.LeaveLobby(conn, msg.LobbyID)
	case "startQuiz":
		srv.StartQuiz(conn, msg.LobbyID)
	case "answerQuestion":
		questionIndex := -1
		if msg.QuestionIndex != nil {
			questionIndex = *msg.QuestionIndex
		}
		srv.AnswerQuestion(ctx, conn, msg.LobbyID, msg.Answer, questionIndex)
	default:
		logger.Warnf("Unknown command %q on connection %s", msg.Type, conn.ID)
		conn.WriteError(fmt.Sprintf("Unknown command type: %s", msg.Type))
	}
}

// writePump drains the connection's outbound channel onto the socket and
// pings periodically. Any write or ping failure ends the pump; the read loop
// notices the broken socket and runs the disconnect path.
func writePump(ctx context.Context, c *websocket.Conn, conn *quiz.Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.Out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("Failed to marshal outgoing msg for connection %s: %v", conn.ID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to connection %s: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Ping failed for connection %s, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
