package handler

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokanhq/dokan-api/internal/domain/user"
)

func TestIssueAndParseToken(t *testing.T) {
	a := NewAuth("secret", time.Hour)

	token, err := a.IssueToken(&user.User{ID: "u1"})
	require.NoError(t, err)

	sub, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestParseToken_Expired(t *testing.T) {
	a := NewAuth("secret", time.Hour)

	token, err := a.IssueToken(&user.User{ID: "u1"})
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	a := NewAuth("secret", time.Hour)
	b := NewAuth("other-secret", time.Hour)

	token, err := a.IssueToken(&user.User{ID: "u1"})
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsUnsignedAlg(t *testing.T) {
	a := NewAuth("secret", time.Hour)

	claims := jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = a.ParseToken(raw)
	assert.Error(t, err)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	a := NewAuth("secret", time.Hour)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.ParseToken(raw)
	assert.Error(t, err)
}
