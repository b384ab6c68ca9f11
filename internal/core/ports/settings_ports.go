package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

type SettingsRepository interface {
	GetByEvent(ctx context.Context, eventID int64) (*domain.VotingSettings, error)
	GetOrCreate(ctx context.Context, eventID int64) (*domain.VotingSettings, error)
	Save(ctx context.Context, settings *domain.VotingSettings) error
}

// UpdateSettingsInput holds the raw organizer form. Parsing happens in the
// service so that every problem ends up in one ValidationError.
type UpdateSettingsInput struct {
	EventSlug              string
	Start                  string
	End                    string
	Text                   string
	AnonymizeSpeakers      bool
	ShowSessionImage       bool
	ShowSessionDescription bool
	LimitTracks            []string
	LimitSubmissionTypes   []string
	AllowedEmails          string
	MinScore               string
	MaxScore               string
	ScoreLabels            map[string]string
}

type SettingsView struct {
	Event           domain.Event            `json:"event"`
	Settings        domain.VotingSettings   `json:"settings"`
	ScoreChoices    []domain.ScoreChoice    `json:"score_choices"`
	Tracks          []domain.Track          `json:"tracks"`
	SubmissionTypes []domain.SubmissionType `json:"submission_types"`
}

type SettingsService interface {
	Authorize(ctx context.Context, organizerID uuid.UUID, eventSlug string) (*domain.Event, error)
	Get(ctx context.Context, eventSlug string) (*SettingsView, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*SettingsView, error)
	CopyFrom(ctx context.Context, targetSlug, sourceSlug string) (*SettingsView, error)
}
