package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyprmtrx/hvm/core"
)

var testSecret = []byte("jwt-test-secret")

func testSession(issued time.Time, ttl time.Duration) *core.Session {
	return &core.Session{
		Handle:      "player_abc123",
		AuthWallets: map[core.Chain]string{core.ChainETH: "0x8ba1f109551bD432803012645Ac136ddd64DBA72"},
		Game:        "hyprmtrx",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(ttl),
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	j := NewJWTTokenizer(testSecret)
	session := testSession(time.Now(), time.Hour)

	token, err := j.SessionToToken(session)
	require.NoError(t, err)

	parsed, err := j.TokenToSession(token)
	require.NoError(t, err)
	assert.Equal(t, session.Handle, parsed.Handle)
	assert.Equal(t, session.AuthWallets, parsed.AuthWallets)
	assert.Equal(t, session.Game, parsed.Game)
	assert.WithinDuration(t, session.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestExpiredTokenIsDistinguishedFromInvalid(t *testing.T) {
	j := NewJWTTokenizer(testSecret)

	token, err := j.SessionToToken(testSession(time.Now().Add(-2*time.Hour), time.Hour))
	require.NoError(t, err)

	_, err = j.TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	_, err = j.TokenToSession("not.a.token")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
	assert.NotErrorIs(t, err, core.ErrTokenExpired)
}

func TestTokenSignedWithOtherSecretIsInvalid(t *testing.T) {
	j := NewJWTTokenizer(testSecret)
	other := NewJWTTokenizer([]byte("a different secret"))

	token, err := other.SessionToToken(testSession(time.Now(), time.Hour))
	require.NoError(t, err)

	_, err = j.TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	j := NewJWTTokenizer(testSecret)

	token, err := j.SessionToToken(testSession(time.Now(), time.Hour))
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = j.TokenToSession(tampered)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
