package ports

import (
	"context"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

type VoteRepository interface {
	GetScore(ctx context.Context, submissionID int64, voter string) (int, bool, error)
	// ScoresFor returns the voter's current scores for the event keyed by
	// submission ID.
	ScoresFor(ctx context.Context, eventID int64, voter string) (map[int64]int, error)
	// Upsert stores vote unless the stored score is already vote.Score. On
	// return vote reflects the stored row; changed is false for a no-op.
	Upsert(ctx context.Context, vote *domain.Vote) (changed bool, err error)
	ListForEvent(ctx context.Context, eventID int64) ([]domain.ExportRow, error)
}

type SignupInput struct {
	EventSlug    string
	Email        string
	SubmissionID *int64
}

type ListInput struct {
	EventSlug    string
	Token        string
	SubmissionID *int64
	TrackIDs     []int64
	Page         int
}

type SubmitInput struct {
	EventSlug string
	Token     string
	Fields    map[string]string
}

type VotingOverview struct {
	Event domain.Event `json:"event"`
	Text  string       `json:"text,omitempty"`
}

type BallotSubmission struct {
	ID          int64    `json:"id"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Abstract    string   `json:"abstract,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Track       string   `json:"track,omitempty"`
	Type        string   `json:"type,omitempty"`
	Speakers    []string `json:"speakers,omitempty"`
	Score       *int     `json:"score"`
}

type TrackFilter struct {
	domain.Track
	Count int `json:"count"`
}

type Ballot struct {
	Event           domain.Event         `json:"event"`
	Text            string               `json:"text,omitempty"`
	ValidLink       bool                 `json:"valid_link"`
	ScoreChoices    []domain.ScoreChoice `json:"score_choices"`
	Submissions     []BallotSubmission   `json:"submissions"`
	Tracks          []TrackFilter        `json:"tracks,omitempty"`
	FilterActive    bool                 `json:"filter_active"`
	RemoveFilterURL string               `json:"remove_filter_url,omitempty"`
	Page            int                  `json:"page"`
	Pages           int                  `json:"pages"`
	Total           int                  `json:"total"`
}

type SubmitResult struct {
	Saved     int `json:"saved"`
	Unchanged int `json:"unchanged"`
}

type VotingService interface {
	Overview(ctx context.Context, eventSlug string) (*VotingOverview, error)
	Signup(ctx context.Context, input SignupInput) error
	ListSubmissions(ctx context.Context, input ListInput) (*Ballot, error)
	SubmitScores(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}
