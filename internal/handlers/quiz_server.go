// internal/handlers/quiz_server.go
package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/M1chU02/TriviaQuiz/internal/cache"
	"github.com/M1chU02/TriviaQuiz/internal/quiz"
	"github.com/M1chU02/TriviaQuiz/internal/trivia"
)

// quizDifficulty is fixed for every lobby; the client never chooses it.
const quizDifficulty = "medium"

// QuizServer owns the process-wide quiz state: the lobby registry, the
// session continuity store, the question source and the optional results
// publisher. Handlers hold a QuizServer and route client commands into it;
// tests construct isolated instances per case.
type QuizServer struct {
	Lobbies  *quiz.LobbyStore
	Sessions *quiz.SessionStore
	Trivia   *trivia.Client
	Results  *cache.Publisher
	Logger   *logrus.Logger
}

// NewQuizServer wires a QuizServer with fresh stores. results may be nil
// when Redis is not configured.
func NewQuizServer(triviaClient *trivia.Client, results *cache.Publisher, logger *logrus.Logger) *QuizServer {
	return &QuizServer{
		Lobbies:  quiz.NewLobbyStore(),
		Sessions: quiz.NewSessionStore(),
		Trivia:   triviaClient,
		Results:  results,
		Logger:   logger,
	}
}

// HandleConnect runs the reconnection handshake for a brand-new connection.
// The session record is read exactly once; a record pointing at a lobby that
// no longer exists is a no-op, not an error.
func (s *QuizServer) HandleConnect(conn *quiz.Connection) {
	rec, ok := s.Sessions.Restore(conn.SessionID)
	if !ok {
		return
	}
	lob, ok := s.Lobbies.Get(rec.LobbyID)
	if !ok {
		return
	}
	lob.Reconnect(conn, rec.Username, rec.IsHost)
	s.Logger.Infof("Session %s rejoined lobby %s (host=%v)", conn.SessionID, rec.LobbyID, rec.IsHost)
}

// GetCategories sends the cached category list to the requesting client.
// The list is empty when the startup fetch failed; that degrades silently.
func (s *QuizServer) GetCategories(conn *quiz.Connection) {
	conn.Write(map[string]interface{}{
		"type":       "categories",
		"categories": s.Trivia.Categories(),
	})
}

// CreateLobby fetches a question set, builds a lobby with the creator as
// sole player and host, and registers it. A provider failure (empty set)
// registers nothing and reports QuestionFetchFailed to the creator only.
// During the fetch no lobby exists yet for the eventual id, so nothing can
// race against the creation.
func (s *QuizServer) CreateLobby(ctx context.Context, conn *quiz.Connection, username string, isPrivate bool, numQuestions, category int) {
	questions := s.Trivia.FetchQuestions(ctx, numQuestions, category, quizDifficulty)
	if len(questions) == 0 {
		conn.WriteError(quiz.ErrQuestionFetchFailed.Error())
		return
	}

	categoryName := s.Trivia.CategoryName(category)
	lob := quiz.NewLobby(conn, username, isPrivate, questions, categoryName)
	lobbyID := s.Lobbies.Add(lob)

	s.Sessions.Save(conn.SessionID, lobbyID, username, true)

	conn.Write(map[string]interface{}{
		"type":         "lobbyCreated",
		"lobbyId":      lobbyID,
		"numQuestions": len(questions),
		"categoryName": categoryName,
	})
	s.Logger.Infof("Lobby %s created by %s", lobbyID, username)
}

// JoinLobby appends the client to an existing lobby and persists its session
// record for later reconnection.
func (s *QuizServer) JoinLobby(conn *quiz.Connection, lobbyID, username string) {
	lob, ok := s.Lobbies.Get(lobbyID)
	if !ok {
		conn.WriteError(quiz.ErrLobbyNotFound.Error())
		return
	}
	if err := lob.Join(conn, username); err != nil {
		conn.WriteError(err.Error())
		return
	}

	s.Sessions.Save(conn.SessionID, lobbyID, username, false)
	s.Logger.Infof("%s joined lobby %s", username, lobbyID)
}

// LeaveLobby removes the client from the lobby, deleting it when it empties,
// clears the session record, and acknowledges with lobbyLeft to the leaving
// client only. Host migration broadcasts happen inside Remove.
func (s *QuizServer) LeaveLobby(conn *quiz.Connection, lobbyID string) {
	lob, ok := s.Lobbies.Get(lobbyID)
	if !ok {
		return
	}

	if empty := lob.Remove(conn.SessionID); empty {
		s.Lobbies.Delete(lobbyID)
		s.Logger.Infof("Lobby %s deleted after last player left", lobbyID)
	}

	s.Sessions.Clear(conn.SessionID)
	conn.Write(map[string]interface{}{"type": "lobbyLeft"})
}

// StartQuiz flips the lobby into the quiz phase on behalf of the host.
func (s *QuizServer) StartQuiz(conn *quiz.Connection, lobbyID string) {
	lob, ok := s.Lobbies.Get(lobbyID)
	if !ok {
		conn.WriteError(quiz.ErrLobbyNotFound.Error())
		return
	}
	if err := lob.Start(conn.ID); err != nil {
		conn.WriteError(err.Error())
		return
	}
	s.Logger.Infof("Quiz started in lobby %s", lobbyID)
}

// AnswerQuestion applies one answer submission. A missing lobby is a silent
// no-op; NotStarted goes to the submitting client only. When the answer
// finishes the quiz the lobby is deleted and the scoreboard is handed to the
// results publisher.
func (s *QuizServer) AnswerQuestion(ctx context.Context, conn *quiz.Connection, lobbyID, answer string, questionIndex int) {
	lob, ok := s.Lobbies.Get(lobbyID)
	if !ok {
		return
	}

	ended, results, err := lob.Answer(conn.ID, answer, questionIndex)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}
	if !ended {
		return
	}

	s.Lobbies.Delete(lobbyID)
	s.Logger.Infof("Quiz ended in lobby %s", lobbyID)
	s.publishResults(lob, results)
}

// Disconnect is the transport-driven analogue of LeaveLobby, run when a
// connection drops. A connection should be in at most one lobby, but the
// scan covers all of them rather than assuming that. No acknowledgment is
// sent and the session record is kept so the client can reconnect.
func (s *QuizServer) Disconnect(conn *quiz.Connection) {
	for _, lob := range s.Lobbies.All() {
		if !lob.HasPlayer(conn.SessionID) {
			continue
		}
		if empty := lob.Remove(conn.SessionID); empty {
			s.Lobbies.Delete(lob.ID)
			s.Logger.Infof("Lobby %s deleted after last player disconnected", lob.ID)
		}
	}
}

// publishResults hands the final scoreboard to the Redis queue for the
// historian. Fire-and-forget: a publish failure is logged, never surfaced to
// players.
func (s *QuizServer) publishResults(lob *quiz.Lobby, results []quiz.Result) {
	if s.Results == nil {
		return
	}

	record := cache.QuizResultRecord{
		LobbyID:      lob.ID,
		CategoryName: lob.CategoryName,
		NumQuestions: lob.NumQuestions,
		Results:      make([]cache.PlayerResult, 0, len(results)),
		EndedAt:      time.Now().UnixMilli(),
	}
	for _, r := range results {
		record.Results = append(record.Results, cache.PlayerResult{Username: r.Username, Score: r.Score})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Results.PublishQuizResult(ctx, record); err != nil {
			s.Logger.Warnf("Failed to publish results for lobby %s: %v", record.LobbyID, err)
		}
	}()
}
