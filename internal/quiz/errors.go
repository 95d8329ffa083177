// internal/quiz/errors.go
package quiz

import "errors"

// Sentinel errors for lobby and quiz operations. The error text doubles as
// the client-facing message delivered in error{message} notifications, so it
// is phrased for players rather than for logs.
var (
	ErrLobbyNotFound       = errors.New("Lobby not found.")
	ErrLobbyFull           = errors.New("Lobby is full.")
	ErrNotHost             = errors.New("Only the host can start the quiz.")
	ErrAlreadyStarted      = errors.New("The game has already started.")
	ErrNotStarted          = errors.New("The game has not started yet.")
	ErrQuestionFetchFailed = errors.New("Failed to fetch questions. Please try again.")
)
