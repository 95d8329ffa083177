// internal/handlers/session.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/M1chU02/TriviaQuiz/internal/auth"
)

// sessionCookieName is the cookie carrying the signed session token.
const sessionCookieName = "quiz_session"

// EnsureSession resolves the stable session id for a request. A valid
// quiz_session cookie yields its existing id; anything else (no cookie,
// expired or garbage token) mints a fresh session and sets the cookie on the
// response. Must run before the WebSocket upgrade so the Set-Cookie header
// can still go out.
func EnsureSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, sessionCookieName+"=") {
		token := extractCookieToken(cookieHeader, sessionCookieName)
		if sessionID, err := auth.ParseSessionToken(token); err == nil {
			return sessionID, nil
		}
		// Fall through and mint a replacement for an invalid token.
	}

	sessionID := uuid.New()
	token, err := auth.CreateSessionToken(sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return sessionID, nil
}

// extractCookieToken extracts a named cookie value from a "Cookie" header,
// or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
