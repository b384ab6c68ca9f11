package ports

import (
	"context"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

// EventRepository reads the host platform's events, tracks and submission
// types.
type EventRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Event, error)
	ListTracks(ctx context.Context, eventID int64) ([]domain.Track, error)
	ListSubmissionTypes(ctx context.Context, eventID int64) ([]domain.SubmissionType, error)
}

type SubmissionRepository interface {
	// ListByEvent returns all submissions of the event ordered by ID, with
	// speaker names loaded.
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Submission, error)
}
