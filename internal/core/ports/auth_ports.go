package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

type PermissionRepository interface {
	CanChangeSettings(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error)
}

type OrganizerAuthService interface {
	IssueAccessToken(userID uuid.UUID, email string, ttl time.Duration) (string, error)
	ParseAccessToken(token string) (*domain.Organizer, error)
}
