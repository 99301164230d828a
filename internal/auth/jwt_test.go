package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("owner-1", secret, time.Hour)
	require.NoError(t, err)

	got, err := OwnerFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", got)
}

func TestOwnerFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, -time.Second)
	require.NoError(t, err)

	_, err = OwnerFromToken(tok, secret)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestOwnerFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = OwnerFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestOwnerFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Owner: "x"}).SignedString(secret)
	require.NoError(t, err)

	_, err = OwnerFromToken(tok, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestOwnerFromToken_MissingOwner(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(secret)
	require.NoError(t, err)

	_, err = OwnerFromToken(tok, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSource_CachesAndRefreshes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenSource("alice", []byte("k"), 10*time.Minute)
	ts.now = func() time.Time { return now }

	first, err := ts.Token()
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	second, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, first, second, "token still fresh")

	now = now.Add(4*time.Minute + 30*time.Second)
	third, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), ts.expires, "re-issued near expiry")
	assert.NotEmpty(t, third)
	assert.Equal(t, "alice", ts.Owner())
}

func TestTokenSource_SetOwner(t *testing.T) {
	t.Parallel()

	ts := NewTokenSource("", []byte("k"), time.Minute)
	_, err := ts.Token()
	require.ErrorIs(t, err, ErrNoOwner)

	ts.SetOwner("bob")
	tok, err := ts.Token()
	require.NoError(t, err)

	owner, err := OwnerFromToken(tok, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)

	ts.SetOwner("")
	_, err = ts.Token()
	require.ErrorIs(t, err, ErrNoOwner)
}
