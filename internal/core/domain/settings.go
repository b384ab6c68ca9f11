package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/core/identity"
)

const (
	DefaultMinScore = 1
	DefaultMaxScore = 3

	// MaxScoreSpan bounds max_score - min_score; every value in the range is
	// rendered as a choice.
	MaxScoreSpan = 100
)

// VotingSettings is the per-event configuration of public voting. There is at
// most one per event.
type VotingSettings struct {
	ID                     int64          `json:"id"`
	EventID                int64          `json:"event_id"`
	Start                  *time.Time     `json:"start,omitempty"`
	End                    *time.Time     `json:"end,omitempty"`
	Text                   string         `json:"text,omitempty"`
	AnonymizeSpeakers      bool           `json:"anonymize_speakers"`
	ShowSessionImage       bool           `json:"show_session_image"`
	ShowSessionDescription bool           `json:"show_session_description"`
	MinScore               int            `json:"min_score"`
	MaxScore               int            `json:"max_score"`
	ScoreLabels            map[int]string `json:"score_labels"`
	AllowedEmails          string         `json:"allowed_emails,omitempty"`
	LimitTracks            []int64        `json:"limit_tracks"`
	LimitSubmissionTypes   []int64        `json:"limit_submission_types"`
}

type ScoreChoice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

func NewVotingSettings(eventID int64) *VotingSettings {
	return &VotingSettings{
		EventID:          eventID,
		MinScore:         DefaultMinScore,
		MaxScore:         DefaultMaxScore,
		ShowSessionImage: true,
		ScoreLabels:      map[int]string{},
	}
}

// IsOpen reports whether now lies strictly inside the voting window. A
// missing bound leaves that side unbounded.
func (s *VotingSettings) IsOpen(now time.Time) bool {
	if s.Start != nil && !now.After(*s.Start) {
		return false
	}
	if s.End != nil && !now.Before(*s.End) {
		return false
	}
	return true
}

// AllowedEmailList returns the normalized allow-list. An empty set means
// everybody may sign up.
func (s *VotingSettings) AllowedEmailList() map[string]struct{} {
	list := make(map[string]struct{})
	for _, line := range strings.Split(s.AllowedEmails, "\n") {
		email := identity.NormalizeEmail(line)
		if email == "" {
			continue
		}
		list[email] = struct{}{}
	}
	return list
}

func (s *VotingSettings) AllowsEmail(email string) bool {
	list := s.AllowedEmailList()
	if len(list) == 0 {
		return true
	}
	_, ok := list[identity.NormalizeEmail(email)]
	return ok
}

// InScope keeps the submissions that can be voted on: submitted ones, further
// limited by track and submission type when those limits are set.
func (s *VotingSettings) InScope(submissions []Submission) []Submission {
	result := make([]Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.State != StateSubmitted {
			continue
		}
		if len(s.LimitTracks) > 0 && (sub.TrackID == nil || !slices.Contains(s.LimitTracks, *sub.TrackID)) {
			continue
		}
		if len(s.LimitSubmissionTypes) > 0 && !slices.Contains(s.LimitSubmissionTypes, sub.SubmissionTypeID) {
			continue
		}
		result = append(result, sub)
	}
	return result
}

// AvailableTracks returns the tracks voters can filter by.
func (s *VotingSettings) AvailableTracks(tracks []Track) []Track {
	if len(s.LimitTracks) == 0 {
		return tracks
	}
	var result []Track
	for _, t := range tracks {
		if slices.Contains(s.LimitTracks, t.ID) {
			result = append(result, t)
		}
	}
	return result
}

func (s *VotingSettings) ValidScore(score int) bool {
	return s.MinScore <= score && score <= s.MaxScore
}

// ScoreRangeValid reports whether the score range is small enough to list.
func (s *VotingSettings) ScoreRangeValid() bool {
	return inInt32(s.MinScore) && inInt32(s.MaxScore) &&
		s.MinScore < s.MaxScore && s.MaxScore-s.MinScore <= MaxScoreSpan
}

func inInt32(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// ScoreChoices lists every value of the score range, or nothing when the
// range is invalid.
func (s *VotingSettings) ScoreChoices() []ScoreChoice {
	if !s.ScoreRangeValid() {
		return nil
	}
	choices := make([]ScoreChoice, 0, s.MaxScore-s.MinScore+1)
	for offset := 0; offset <= s.MaxScore-s.MinScore; offset++ {
		value := s.MinScore + offset
		label := s.ScoreLabels[value]
		if label == "" {
			label = strconv.Itoa(value)
		}
		choices = append(choices, ScoreChoice{Value: value, Label: label})
	}
	return choices
}

// Validate checks the invariants an organizer must respect when saving.
func (s *VotingSettings) Validate() error {
	verr := NewValidationError()
	switch {
	case !inInt32(s.MinScore):
		verr.Add("min_score", "This score is out of range.")
	case !inInt32(s.MaxScore):
		verr.Add("max_score", "This score is out of range.")
	case s.MinScore >= s.MaxScore:
		verr.Add("min_score", "Please assign a minimum score smaller than the maximum score.")
	case s.MaxScore-s.MinScore > MaxScoreSpan:
		verr.Add("max_score", "The score range may not span more than "+strconv.Itoa(MaxScoreSpan)+" points.")
	}
	if s.Start != nil && s.End != nil && !s.Start.Before(*s.End) {
		verr.Add("end", "The end of the voting period must be after its start.")
	}
	for value := range s.ScoreLabels {
		if !s.ValidScore(value) {
			verr.Add("score_label_"+strconv.Itoa(value), "This score is outside of the configured range.")
		}
	}
	return verr.ErrOrNil()
}
