package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("round-trip-secret", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "jordan@example.com"}

	raw, err := issuer.Issue(user)
	require.NoError(t, err)

	sub, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("round-trip-secret", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "jordan@example.com"}

	expired, err := NewTokenIssuer("round-trip-secret", -time.Minute).Issue(user)
	require.NoError(t, err)
	foreign, err := NewTokenIssuer("another-secret", time.Hour).Issue(user)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"alg none":     none,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
