package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) ports.SettingsRepository {
	return &settingsRepository{
		db: db,
	}
}

func (r *settingsRepository) GetByEvent(ctx context.Context, eventID int64) (*domain.VotingSettings, error) {
	query := `
		SELECT id, event_id, voting_start, voting_end, text, anonymize_speakers,
		       show_session_image, show_session_description, min_score, max_score,
		       score_labels, allowed_emails
		FROM voting_settings
		WHERE event_id = $1
	`

	var s domain.VotingSettings
	var start, end sql.NullTime
	var labels string
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&s.ID, &s.EventID, &start, &end, &s.Text, &s.AnonymizeSpeakers,
		&s.ShowSessionImage, &s.ShowSessionDescription, &s.MinScore, &s.MaxScore,
		&labels, &s.AllowedEmails,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get voting settings: %w", err)
	}

	s.Start = timePtr(start)
	s.End = timePtr(end)
	s.ScoreLabels = map[int]string{}
	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &s.ScoreLabels); err != nil {
			return nil, fmt.Errorf("failed to decode score labels: %w", err)
		}
	}

	s.LimitTracks, err = r.fetchIDs(ctx, `SELECT track_id FROM voting_settings_tracks WHERE settings_id = $1 ORDER BY track_id`, s.ID)
	if err != nil {
		return nil, err
	}
	s.LimitSubmissionTypes, err = r.fetchIDs(ctx, `SELECT submission_type_id FROM voting_settings_submission_types WHERE settings_id = $1 ORDER BY submission_type_id`, s.ID)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *settingsRepository) GetOrCreate(ctx context.Context, eventID int64) (*domain.VotingSettings, error) {
	defaults := domain.NewVotingSettings(eventID)
	query := `
		INSERT INTO voting_settings (event_id, min_score, max_score, show_session_image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, eventID, defaults.MinScore, defaults.MaxScore, defaults.ShowSessionImage)
	if err != nil {
		return nil, fmt.Errorf("failed to create voting settings: %w", err)
	}
	return r.GetByEvent(ctx, eventID)
}

func (r *settingsRepository) Save(ctx context.Context, s *domain.VotingSettings) error {
	labels, err := json.Marshal(s.ScoreLabels)
	if err != nil {
		return fmt.Errorf("failed to encode score labels: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE voting_settings
		SET voting_start = $1, voting_end = $2, text = $3, anonymize_speakers = $4,
		    show_session_image = $5, show_session_description = $6, min_score = $7,
		    max_score = $8, score_labels = $9, allowed_emails = $10
		WHERE id = $11
	`
	res, err := tx.ExecContext(ctx, query,
		nullTime(s.Start), nullTime(s.End), s.Text, s.AnonymizeSpeakers,
		s.ShowSessionImage, s.ShowSessionDescription, s.MinScore,
		s.MaxScore, string(labels), s.AllowedEmails,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update voting settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSettingsNotFound
	}

	if err := replaceIDs(ctx, tx, "voting_settings_tracks", "track_id", s.ID, s.LimitTracks); err != nil {
		return err
	}
	if err := replaceIDs(ctx, tx, "voting_settings_submission_types", "submission_type_id", s.ID, s.LimitSubmissionTypes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *settingsRepository) fetchIDs(ctx context.Context, query string, settingsID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, settingsID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings limits: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan settings limit: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings limits: %w", err)
	}
	return ids, nil
}

// replaceIDs rewrites one of the settings join tables. table and column are
// fixed identifiers, never user input.
func replaceIDs(ctx context.Context, tx *sql.Tx, table, column string, settingsID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE settings_id = $1`, table), settingsID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if len(ids) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (settings_id, %s) VALUES ($1, $2)`, table, column))
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", table, err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, settingsID, id); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
