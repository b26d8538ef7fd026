package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker(strings.Repeat("k", 32))
	sess := Session{ID: "s1", UserID: "u_1", Email: "a@b.c"}

	tok, exp, err := tm.New(sess, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "s1", c.SessionID)
	assert.Equal(t, "u_1", c.UserID)
	assert.Equal(t, "a@b.c", c.Email)
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker(strings.Repeat("k", 32))
	sess := Session{ID: "s1", UserID: "u_1", Email: "a@b.c"}

	other, _, err := NewTokenMaker(strings.Repeat("z", 32)).New(sess, time.Hour)
	require.NoError(t, err)
	_, err = tm.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := tm.New(sess, -time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSession, _, err := tm.New(Session{UserID: "u_1"}, time.Hour)
	require.NoError(t, err)
	_, err = tm.Parse(noSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: "s1", UserID: "u_1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
