package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

// OrganizerAuth issues and checks the access tokens organizers present to the
// settings and export endpoints. Tokens are minted by the host platform or by
// cmd/organizertoken with the shared JWT secret.
type OrganizerAuth struct {
	jwtSecret []byte
	now       func() time.Time
}

var _ ports.OrganizerAuthService = (*OrganizerAuth)(nil)

func NewOrganizerAuth(secret string) (*OrganizerAuth, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &OrganizerAuth{jwtSecret: []byte(secret), now: time.Now}, nil
}

func (a *OrganizerAuth) IssueAccessToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (a *OrganizerAuth) ParseAccessToken(tokenString string) (*domain.Organizer, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, domain.ErrInvalidAccessToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, domain.ErrInvalidAccessToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrInvalidAccessToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrInvalidAccessToken
	}
	email, _ := claims["email"].(string)

	return &domain.Organizer{ID: userID, Email: email, ExpiresAt: exp.Time}, nil
}
