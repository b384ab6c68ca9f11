package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) ports.SubmissionRepository {
	return &submissionRepository{
		db: db,
	}
}

func (r *submissionRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Submission, error) {
	query := `
		SELECT id, event_id, code, title, abstract, description, image_url, state, track_id, submission_type_id
		FROM submissions
		WHERE event_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		var s domain.Submission
		var trackID sql.NullInt64
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.Code, &s.Title, &s.Abstract, &s.Description,
			&s.ImageURL, &s.State, &trackID, &s.SubmissionTypeID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if trackID.Valid {
			s.TrackID = &trackID.Int64
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	rows.Close()

	speakers, err := r.fetchSpeakers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		submissions[i].Speakers = speakers[submissions[i].ID]
	}

	return submissions, nil
}

func (r *submissionRepository) fetchSpeakers(ctx context.Context, eventID int64) (map[int64][]string, error) {
	query := `
		SELECT sp.submission_id, sp.name
		FROM submission_speakers sp
		JOIN submissions s ON s.id = sp.submission_id
		WHERE s.event_id = $1
		ORDER BY sp.submission_id, sp.position
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get speakers: %w", err)
	}
	defer rows.Close()

	speakers := make(map[int64][]string)
	for rows.Next() {
		var submissionID int64
		var name string
		if err := rows.Scan(&submissionID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan speaker: %w", err)
		}
		speakers[submissionID] = append(speakers[submissionID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating speakers: %w", err)
	}
	return speakers, nil
}
