// Package testutil provides a migrated SQLite database and helpers that seed
// the host platform tables for tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/sqlite"
)

// SetupTestDB opens a fresh SQLite database in a temporary directory and
// applies all migrations. The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "voting.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db))
	return db
}

func CreateEvent(t *testing.T, db *sql.DB, slug, name string) int64 {
	t.Helper()
	return insertID(t, db, `INSERT INTO events (slug, name) VALUES ($1, $2) RETURNING id`, slug, name)
}

func CreateTrack(t *testing.T, db *sql.DB, eventID int64, name string) int64 {
	t.Helper()
	return insertID(t, db, `INSERT INTO tracks (event_id, name, color) VALUES ($1, $2, $3) RETURNING id`, eventID, name, "#000000")
}

func CreateSubmissionType(t *testing.T, db *sql.DB, eventID int64, name string) int64 {
	t.Helper()
	return insertID(t, db, `INSERT INTO submission_types (event_id, name) VALUES ($1, $2) RETURNING id`, eventID, name)
}

// SubmissionFixture describes a submission row. Zero values get defaults:
// state "submitted" and the title "Talk <code>".
type SubmissionFixture struct {
	EventID          int64
	Code             string
	Title            string
	Abstract         string
	Description      string
	ImageURL         string
	State            string
	TrackID          *int64
	SubmissionTypeID int64
	Speakers         []string
}

func CreateSubmission(t *testing.T, db *sql.DB, f SubmissionFixture) int64 {
	t.Helper()

	if f.State == "" {
		f.State = "submitted"
	}
	if f.Title == "" {
		f.Title = "Talk " + f.Code
	}
	id := insertID(t, db, `
		INSERT INTO submissions (event_id, code, title, abstract, description, image_url, state, track_id, submission_type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		f.EventID, f.Code, f.Title, f.Abstract, f.Description, f.ImageURL, f.State, f.TrackID, f.SubmissionTypeID,
	)
	for i, name := range f.Speakers {
		_, err := db.Exec(`INSERT INTO submission_speakers (submission_id, name, position) VALUES ($1, $2, $3)`, id, name, i)
		require.NoError(t, err)
	}
	return id
}

// GrantSettingsPermission creates an organizer with the permission to change
// the event's settings and returns the organizer's ID.
func GrantSettingsPermission(t *testing.T, db *sql.DB, eventID int64) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec(`INSERT INTO event_permissions (event_id, user_id, can_change_settings) VALUES ($1, $2, $3)`, eventID, userID, true)
	require.NoError(t, err)
	return userID
}

// CountMails returns the number of queued mails for recipient.
func CountMails(t *testing.T, db *sql.DB, recipient string) int {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM queued_mails WHERE recipient = $1`, recipient).Scan(&n)
	require.NoError(t, err)
	return n
}

// LastMailBody returns the body of the most recent mail queued for recipient.
func LastMailBody(t *testing.T, db *sql.DB, recipient string) string {
	t.Helper()

	var body string
	err := db.QueryRow(`SELECT body FROM queued_mails WHERE recipient = $1 ORDER BY created_at DESC LIMIT 1`, recipient).Scan(&body)
	require.NoError(t, err)
	return body
}

func insertID(t *testing.T, db *sql.DB, query string, args ...any) int64 {
	t.Helper()

	var id int64
	require.NoError(t, db.QueryRow(query, args...).Scan(&id))
	return id
}
