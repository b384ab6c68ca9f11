package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

// Accepted layouts for the start and end fields. Values without a zone are
// read as UTC.
var formTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type settingsService struct {
	events      ports.EventRepository
	settings    ports.SettingsRepository
	permissions ports.PermissionRepository
}

func NewSettingsService(events ports.EventRepository, settings ports.SettingsRepository, permissions ports.PermissionRepository) ports.SettingsService {
	return &settingsService{
		events:      events,
		settings:    settings,
		permissions: permissions,
	}
}

func (s *settingsService) Authorize(ctx context.Context, organizerID uuid.UUID, eventSlug string) (*domain.Event, error) {
	event, err := s.events.GetBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}

	allowed, err := s.permissions.CanChangeSettings(ctx, organizerID, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check permissions: %w", err)
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *settingsService) Get(ctx context.Context, eventSlug string) (*ports.SettingsView, error) {
	event, err := s.events.GetBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetOrCreate(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, event, settings)
}

func (s *settingsService) Update(ctx context.Context, input ports.UpdateSettingsInput) (*ports.SettingsView, error) {
	event, err := s.events.GetBySlug(ctx, input.EventSlug)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetOrCreate(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	tracks, err := s.events.ListTracks(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	types, err := s.events.ListSubmissionTypes(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission types: %w", err)
	}

	verr := domain.NewValidationError()
	updated := *settings

	updated.Start = parseFormTime(verr, "start", input.Start)
	updated.End = parseFormTime(verr, "end", input.End)
	updated.Text = strings.TrimSpace(input.Text)
	updated.AnonymizeSpeakers = input.AnonymizeSpeakers
	updated.ShowSessionImage = input.ShowSessionImage
	updated.ShowSessionDescription = input.ShowSessionDescription
	updated.AllowedEmails = strings.TrimSpace(input.AllowedEmails)

	updated.MinScore = parseFormInt(verr, "min_score", input.MinScore, settings.MinScore)
	updated.MaxScore = parseFormInt(verr, "max_score", input.MaxScore, settings.MaxScore)

	trackIDs := make([]int64, 0, len(tracks))
	for _, t := range tracks {
		trackIDs = append(trackIDs, t.ID)
	}
	typeIDs := make([]int64, 0, len(types))
	for _, t := range types {
		typeIDs = append(typeIDs, t.ID)
	}
	updated.LimitTracks = parseFormChoices(verr, "limit_tracks", input.LimitTracks, trackIDs)
	updated.LimitSubmissionTypes = parseFormChoices(verr, "limit_submission_types", input.LimitSubmissionTypes, typeIDs)

	updated.ScoreLabels = map[int]string{}
	if err := updated.Validate(); err != nil {
		var fieldErrs *domain.ValidationError
		if errors.As(err, &fieldErrs) {
			for field, msg := range fieldErrs.Fields {
				verr.Add(field, msg)
			}
		}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	// Labels are kept for the new range only.
	for offset := 0; offset <= updated.MaxScore-updated.MinScore; offset++ {
		value := updated.MinScore + offset
		label := strings.TrimSpace(input.ScoreLabels[strconv.Itoa(value)])
		if label != "" {
			updated.ScoreLabels[value] = label
		}
	}

	if err := s.settings.Save(ctx, &updated); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "voting settings updated", "event", event.Slug)

	return &ports.SettingsView{
		Event:           *event,
		Settings:        updated,
		ScoreChoices:    updated.ScoreChoices(),
		Tracks:          tracks,
		SubmissionTypes: types,
	}, nil
}

// CopyFrom copies the settings of another event. Track and type limits refer
// to the source event's own tracks and types and are therefore dropped.
func (s *settingsService) CopyFrom(ctx context.Context, targetSlug, sourceSlug string) (*ports.SettingsView, error) {
	target, err := s.events.GetBySlug(ctx, targetSlug)
	if err != nil {
		return nil, err
	}
	source, err := s.events.GetBySlug(ctx, sourceSlug)
	if err != nil {
		return nil, err
	}

	from, err := s.settings.GetByEvent(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	to, err := s.settings.GetOrCreate(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	copied := *from
	copied.ID = to.ID
	copied.EventID = target.ID
	copied.LimitTracks = nil
	copied.LimitSubmissionTypes = nil
	copied.ScoreLabels = make(map[int]string, len(from.ScoreLabels))
	for k, v := range from.ScoreLabels {
		copied.ScoreLabels[k] = v
	}

	if err := s.settings.Save(ctx, &copied); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "voting settings copied", "event", target.Slug, "source", source.Slug)

	return s.view(ctx, target, &copied)
}

func (s *settingsService) view(ctx context.Context, event *domain.Event, settings *domain.VotingSettings) (*ports.SettingsView, error) {
	tracks, err := s.events.ListTracks(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	types, err := s.events.ListSubmissionTypes(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission types: %w", err)
	}

	return &ports.SettingsView{
		Event:           *event,
		Settings:        *settings,
		ScoreChoices:    settings.ScoreChoices(),
		Tracks:          tracks,
		SubmissionTypes: types,
	}, nil
}

func parseFormTime(verr *domain.ValidationError, field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range formTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	verr.Add(field, "Enter a valid date and time.")
	return nil
}

func parseFormInt(verr *domain.ValidationError, field, value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		verr.Add(field, "This field is required.")
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		verr.Add(field, "Enter a whole number.")
		return fallback
	}
	return n
}

func parseFormChoices(verr *domain.ValidationError, field string, values []string, valid []int64) []int64 {
	var ids []int64
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || !slices.Contains(valid, id) {
			verr.Add(field, "Select a valid choice.")
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
