package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "doc@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestValid_EmptySession(t *testing.T) {
	s := New()
	require.False(t, s.Valid())
}

func TestValid_FreshToken(t *testing.T) {
	s := New()
	s.Set(signedToken(t, time.Hour), "doc@example.com", "Dr. Grey")
	require.True(t, s.Valid())
	require.Equal(t, "doc@example.com", s.Email())
	require.Equal(t, "Dr. Grey", s.Name())
}

func TestValid_ExpiredToken(t *testing.T) {
	s := New()
	s.Set(signedToken(t, -time.Minute), "doc@example.com", "Dr. Grey")
	require.False(t, s.Valid())
}

func TestValid_OpaqueToken(t *testing.T) {
	s := New()
	s.Set("not-a-jwt", "doc@example.com", "Dr. Grey")
	require.True(t, s.Valid(), "opaque tokens can only be checked server-side")
}

func TestExpire_FiresHookAndClears(t *testing.T) {
	s := New()
	s.Set(signedToken(t, time.Hour), "doc@example.com", "Dr. Grey")

	fired := 0
	s.OnExpire(func() { fired++ })

	s.Expire()
	require.Equal(t, 1, fired)
	require.Empty(t, s.Token())
	require.False(t, s.Valid())
}

func TestClear_DoesNotFireHook(t *testing.T) {
	s := New()
	s.Set(signedToken(t, time.Hour), "doc@example.com", "Dr. Grey")

	fired := 0
	s.OnExpire(func() { fired++ })

	s.Clear()
	require.Zero(t, fired)
	require.Empty(t, s.Token())
}
