package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) ports.EventRepository {
	return &eventRepository{
		db: db,
	}
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT id, slug, name FROM events WHERE slug = $1`

	var event domain.Event
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&event.ID, &event.Slug, &event.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) ListTracks(ctx context.Context, eventID int64) ([]domain.Track, error) {
	query := `
		SELECT id, event_id, name, color
		FROM tracks
		WHERE event_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}
	return tracks, nil
}

func (r *eventRepository) ListSubmissionTypes(ctx context.Context, eventID int64) ([]domain.SubmissionType, error) {
	query := `
		SELECT id, event_id, name
		FROM submission_types
		WHERE event_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission types: %w", err)
	}
	defer rows.Close()

	var types []domain.SubmissionType
	for rows.Next() {
		var t domain.SubmissionType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan submission type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission types: %w", err)
	}
	return types, nil
}
