package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/identity"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
	"github.com/vncsmyrnk/publicvoting/internal/testutil"
)

const testSlug = "democon"

var testNow = time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *sql.DB
	codec    *identity.Codec
	eventID  int64
	typeID   int64
	events   ports.EventRepository
	subs     ports.SubmissionRepository
	settings ports.SettingsRepository
	votes    ports.VoteRepository
	voting   *votingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	codec, err := identity.NewCodec("test-secret", 0)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		codec:    codec,
		events:   sqlstore.NewEventRepository(db),
		subs:     sqlstore.NewSubmissionRepository(db),
		settings: sqlstore.NewSettingsRepository(db),
		votes:    sqlstore.NewVoteRepository(db),
	}
	f.eventID = testutil.CreateEvent(t, db, testSlug, "DemoCon")
	f.typeID = testutil.CreateSubmissionType(t, db, f.eventID, "Talk")

	f.voting = NewVotingService(f.events, f.subs, f.settings, f.votes, sqlstore.NewMailQueue(db), codec, "https://cfp.example.com/").(*votingService)
	f.voting.now = func() time.Time { return testNow }
	return f
}

// configure creates the event's voting settings and lets the test adjust them.
func (f *fixture) configure(t *testing.T, adjust func(s *domain.VotingSettings)) *domain.VotingSettings {
	t.Helper()

	ctx := context.Background()
	s, err := f.settings.GetOrCreate(ctx, f.eventID)
	require.NoError(t, err)
	if adjust != nil {
		adjust(s)
	}
	require.NoError(t, f.settings.Save(ctx, s))
	return s
}

func (f *fixture) submission(t *testing.T, code string, adjust func(s *testutil.SubmissionFixture)) int64 {
	t.Helper()

	sub := testutil.SubmissionFixture{EventID: f.eventID, Code: code, SubmissionTypeID: f.typeID}
	if adjust != nil {
		adjust(&sub)
	}
	return testutil.CreateSubmission(t, f.db, sub)
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()

	token, err := f.codec.Sign(f.codec.HashEmail(email, testSlug), testSlug)
	require.NoError(t, err)
	return token
}
