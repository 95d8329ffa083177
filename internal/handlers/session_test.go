// internal/handlers/session_test.go
package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M1chU02/TriviaQuiz/internal/auth"
)

func TestEnsureSessionMintsAndReplays(t *testing.T) {
	auth.Init()

	// First visit: no cookie, a session is minted and set on the response.
	req := httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	first, err := EnsureSession(w, req)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)

	// Replaying the cookie resolves the same session id without a new cookie.
	req2 := httptest.NewRequest("GET", "/ws", nil)
	req2.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	second, err := EnsureSession(w2, req2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, w2.Result().Cookies())
}

func TestEnsureSessionReplacesGarbageToken(t *testing.T) {
	auth.Init()

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Cookie", sessionCookieName+"=garbage")
	w := httptest.NewRecorder()

	sid, err := EnsureSession(w, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sid)
	require.Len(t, w.Result().Cookies(), 1, "an invalid token gets a replacement cookie")
}

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc", extractCookieToken("quiz_session=abc", "quiz_session"))
	assert.Equal(t, "abc", extractCookieToken("other=x; quiz_session=abc; more=y", "quiz_session"))
	assert.Equal(t, "", extractCookieToken("other=x", "quiz_session"))
}
