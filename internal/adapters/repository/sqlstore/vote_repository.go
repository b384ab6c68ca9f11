package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) GetScore(ctx context.Context, submissionID int64, voter string) (int, bool, error) {
	query := `SELECT score FROM votes WHERE submission_id = $1 AND voter_identity = $2`

	var score int
	err := r.db.QueryRowContext(ctx, query, submissionID, voter).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get score: %w", err)
	}
	return score, true, nil
}

func (r *voteRepository) ScoresFor(ctx context.Context, eventID int64, voter string) (map[int64]int, error) {
	query := `
		SELECT v.submission_id, v.score
		FROM votes v
		JOIN submissions s ON s.id = v.submission_id
		WHERE s.event_id = $1 AND v.voter_identity = $2
	`
	rows, err := r.db.QueryContext(ctx, query, eventID, voter)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int)
	for rows.Next() {
		var submissionID int64
		var score int
		if err := rows.Scan(&submissionID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores[submissionID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return scores, nil
}

// Upsert relies on the unique (submission_id, voter_identity) constraint, so
// concurrent writers for the same pair end up with one row and the last write
// wins. When the stored score already matches, the row is left untouched.
func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) (bool, error) {
	query := `
		INSERT INTO votes (id, submission_id, voter_identity, score, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (submission_id, voter_identity) DO UPDATE
		SET score = EXCLUDED.score, timestamp = EXCLUDED.timestamp
		WHERE votes.score <> EXCLUDED.score
		RETURNING id
	`
	vote.Timestamp = vote.Timestamp.UTC()
	err := r.db.QueryRowContext(ctx, query,
		vote.ID, vote.SubmissionID, vote.VoterIdentity, vote.Score, vote.Timestamp,
	).Scan(&vote.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to upsert vote: %w", err)
	}

	existing := `
		SELECT id, score, timestamp
		FROM votes
		WHERE submission_id = $1 AND voter_identity = $2
	`
	err = r.db.QueryRowContext(ctx, existing, vote.SubmissionID, vote.VoterIdentity).
		Scan(&vote.ID, &vote.Score, &vote.Timestamp)
	if err != nil {
		return false, fmt.Errorf("failed to get existing vote: %w", err)
	}
	vote.Timestamp = vote.Timestamp.UTC()
	return false, nil
}

func (r *voteRepository) ListForEvent(ctx context.Context, eventID int64) ([]domain.ExportRow, error) {
	query := `
		SELECT s.code, v.voter_identity, v.timestamp, v.score,
		       st.name, COALESCE(t.name, ''), s.title
		FROM votes v
		JOIN submissions s ON s.id = v.submission_id
		JOIN submission_types st ON st.id = s.submission_type_id
		LEFT JOIN tracks t ON t.id = s.track_id
		WHERE s.event_id = $1
		ORDER BY s.code, v.timestamp, v.voter_identity
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var result []domain.ExportRow
	for rows.Next() {
		var row domain.ExportRow
		if err := rows.Scan(&row.Code, &row.VoterIdentity, &row.Timestamp, &row.Score, &row.Type, &row.Track, &row.Title); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		row.Timestamp = row.Timestamp.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return result, nil
}
