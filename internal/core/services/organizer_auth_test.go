package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

func TestOrganizerAuth_RoundTrip(t *testing.T) {
	auth, err := NewOrganizerAuth("test-secret")
	require.NoError(t, err)

	userID := uuid.New()
	token, err := auth.IssueAccessToken(userID, "orga@example.com", 15*time.Minute)
	require.NoError(t, err)

	organizer, err := auth.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, organizer.ID)
	assert.Equal(t, "orga@example.com", organizer.Email)
}

func TestOrganizerAuth_Rejects(t *testing.T) {
	auth, err := NewOrganizerAuth("test-secret")
	require.NoError(t, err)
	other, err := NewOrganizerAuth("other-secret")
	require.NoError(t, err)

	userID := uuid.New()
	foreign, err := other.IssueAccessToken(userID, "", time.Minute)
	require.NoError(t, err)

	expired, err := auth.IssueAccessToken(userID, "", -time.Minute)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String()}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "abc",
		"foreign":     foreign,
		"expired":     expired,
		"no expiry":   noExpiry,
		"bad subject": badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ParseAccessToken(token)
			assert.ErrorIs(t, err, domain.ErrInvalidAccessToken)
		})
	}
}

func TestNewOrganizerAuth_RequiresSecret(t *testing.T) {
	_, err := NewOrganizerAuth("")
	assert.Error(t, err)
}
