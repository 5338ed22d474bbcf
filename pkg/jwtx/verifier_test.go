package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, priv ed25519.PrivateKey, kid string, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func freshClaims(subject string, ttl time.Duration) Claims {
	now := time.Now().UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://auth.test",
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"identity"},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scopes: []string{"identity:read", "identity:write"},
	}
}

func TestKeySetVerifier(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	keys := NewKeySet()
	require.NoError(t, keys.AddJWK(newEd25519JWK("test-key", pub)))
	require.True(t, keys.IsReady())

	v := NewVerifier(keys, "https://auth.test", []string{"identity"})

	t.Run("accepts a valid token", func(t *testing.T) {
		raw := signToken(t, priv, "test-key", freshClaims("user-1", time.Hour))

		claims, err := v.Verify(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Contains(t, claims.Scopes, "identity:write")
	})

	t.Run("rejects unknown kid", func(t *testing.T) {
		raw := signToken(t, priv, "other-key", freshClaims("user-1", time.Hour))

		_, err := v.Verify(raw)
		require.Error(t, err)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		claims := freshClaims("user-1", time.Hour)
		claims.Issuer = "https://evil.test"
		raw := signToken(t, priv, "test-key", claims)

		_, err := v.Verify(raw)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		raw := signToken(t, priv, "test-key", freshClaims("user-1", -time.Minute))

		_, err := v.Verify(raw)
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		require.Error(t, err)
	})
}

func newEd25519JWK(kid string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: "sig",
		Alg: "EdDSA",
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}
