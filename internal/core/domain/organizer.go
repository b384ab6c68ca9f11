package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organizer is the authenticated principal behind an organizer access token.
// Accounts live on the host platform; only the claims are known here.
type Organizer struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Mail is a message handed to the host platform's outbox.
type Mail struct {
	ID        uuid.UUID `json:"id"`
	EventID   int64     `json:"event_id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
