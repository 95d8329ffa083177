// internal/auth/session_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	Init()

	sid := uuid.New()
	token, err := CreateSessionToken(sid)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	Init()

	_, err := ParseSessionToken("not-a-token")
	assert.Error(t, err)
}

func TestParseSessionTokenRejectsForeignKey(t *testing.T) {
	Init()
	token, err := CreateSessionToken(uuid.New())
	require.NoError(t, err)

	// New key pair invalidates previously issued tokens.
	Init()
	_, err = ParseSessionToken(token)
	assert.Error(t, err)
}
