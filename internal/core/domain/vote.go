package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one voter's current score for one submission. VoterIdentity is the
// 32 character keyed hash of the voter's email, never the email itself.
type Vote struct {
	ID            uuid.UUID `json:"id"`
	SubmissionID  int64     `json:"submission_id"`
	VoterIdentity string    `json:"voter"`
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
}

// ExportRow is the flattened projection of a vote used by the CSV export.
type ExportRow struct {
	Code          string
	VoterIdentity string
	Timestamp     time.Time
	Score         int
	Type          string
	Track         string
	Title         string
}
