package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()

	codec, err := NewTokenCodec(testSecret, 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodecSecretValidation(t *testing.T) {
	t.Parallel()

	t.Run("short secret fails at construction", func(t *testing.T) {
		_, err := NewTokenCodec("too-short", 15*time.Minute, 168*time.Hour)
		require.ErrorIs(t, err, model.ErrWeakSecret)
	})

	t.Run("empty secret fails at construction", func(t *testing.T) {
		_, err := NewTokenCodec("", 15*time.Minute, 168*time.Hour)
		require.ErrorIs(t, err, model.ErrWeakSecret)
	})

	t.Run("32 byte secret is accepted", func(t *testing.T) {
		codec, err := NewTokenCodec(testSecret, 0, 0)
		require.NoError(t, err)
		require.Equal(t, DefaultAccessTTL, codec.AccessTTL())
		require.Equal(t, DefaultRefreshTTL, codec.RefreshTTL())
	})
}

func TestTokenCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	t.Run("decode recovers claims plus iat and exp", func(t *testing.T) {
		token, err := codec.Encode(map[string]any{"sub": "42", "tenant": "acme"}, 900*time.Second)
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, "42", claims.Subject)
		require.Equal(t, "acme", claims.Extra["tenant"])
		require.Equal(t, 900*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt))
	})

	t.Run("expired token fails to decode", func(t *testing.T) {
		token, err := codec.Encode(map[string]any{"sub": "42"}, -time.Minute)
		require.NoError(t, err)

		_, err = codec.Decode(token)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("tampered payload fails signature verification", func(t *testing.T) {
		token, err := codec.Encode(map[string]any{"sub": "42"}, time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		payload := []byte(parts[1])
		if payload[0] == 'A' {
			payload[0] = 'B'
		} else {
			payload[0] = 'A'
		}
		tampered := parts[0] + "." + string(payload) + "." + parts[2]

		_, err = codec.Decode(tampered)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("garbage token fails to decode", func(t *testing.T) {
		_, err := codec.Decode("not.a.token")
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("token signed with a different secret is rejected", func(t *testing.T) {
		other, err := NewTokenCodec("ffffffffffffffffffffffffffffffff", 15*time.Minute, time.Hour)
		require.NoError(t, err)

		token, err := other.Encode(map[string]any{"sub": "42"}, time.Hour)
		require.NoError(t, err)

		_, err = codec.Decode(token)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestTokenCodecTypedTokens(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	t.Run("access token carries type and default ttl", func(t *testing.T) {
		token, err := codec.CreateAccessToken("42", map[string]any{"username": "alice"})
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, "42", claims.Subject)
		require.Equal(t, model.TokenTypeAccess, claims.Type)
		require.Equal(t, "alice", claims.Username)
		require.NotEmpty(t, claims.TokenID)
		require.Equal(t, 900*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt))
	})

	t.Run("refresh token carries type and long ttl", func(t *testing.T) {
		token, err := codec.CreateRefreshToken("42", nil)
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, model.TokenTypeRefresh, claims.Type)
		require.Equal(t, 168*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
	})

	t.Run("two tokens for the same subject have distinct ids", func(t *testing.T) {
		first, err := codec.CreateAccessToken("42", nil)
		require.NoError(t, err)
		second, err := codec.CreateAccessToken("42", nil)
		require.NoError(t, err)

		firstClaims, err := codec.Decode(first)
		require.NoError(t, err)
		secondClaims, err := codec.Decode(second)
		require.NoError(t, err)
		require.NotEqual(t, firstClaims.TokenID, secondClaims.TokenID)
	})
}
