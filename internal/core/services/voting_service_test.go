package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
	"github.com/vncsmyrnk/publicvoting/internal/testutil"
)

type mockMailQueue struct {
	mock.Mock
}

func (m *mockMailQueue) Enqueue(ctx context.Context, mail *domain.Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

func TestVotingGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	token := f.token(t, "voter@example.com")

	// 1. No settings at all
	_, err := f.voting.Overview(ctx, testSlug)
	assert.ErrorIs(t, err, domain.ErrVotingUnavailable)

	// 2. Unknown event looks the same
	_, err = f.voting.Overview(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrVotingUnavailable)

	// 3. Window not yet open
	start := testNow.Add(time.Minute)
	f.configure(t, func(s *domain.VotingSettings) { s.Start = &start })
	_, err = f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token})
	assert.ErrorIs(t, err, domain.ErrVotingUnavailable)
	err = f.voting.Signup(ctx, ports.SignupInput{EventSlug: testSlug, Email: "voter@example.com"})
	assert.ErrorIs(t, err, domain.ErrVotingUnavailable)
	_, err = f.voting.SubmitScores(ctx, ports.SubmitInput{EventSlug: testSlug, Token: token})
	assert.ErrorIs(t, err, domain.ErrVotingUnavailable)

	// 4. Open window
	start = testNow.Add(-time.Minute)
	f.configure(t, func(s *domain.VotingSettings) { s.Start = &start; s.Text = "Welcome" })
	overview, err := f.voting.Overview(ctx, testSlug)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", overview.Text)
	assert.Equal(t, "DemoCon", overview.Event.Name)
}

func TestSignup_QueuesMailWithLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)

	subID := int64(42)
	err := f.voting.Signup(ctx, ports.SignupInput{EventSlug: testSlug, Email: "Voter@Example.com", SubmissionID: &subID})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountMails(t, f.db, "Voter@Example.com"))
	body := testutil.LastMailBody(t, f.db, "Voter@Example.com")
	assert.Contains(t, body, "DemoCon")

	prefix := "https://cfp.example.com/democon/vote/talks/"
	start := strings.Index(body, prefix)
	require.GreaterOrEqual(t, start, 0)
	link := strings.Fields(body[start:])[0]
	assert.True(t, strings.HasSuffix(link, "?submission_id=42"))

	token := strings.TrimSuffix(strings.TrimPrefix(link, prefix), "?submission_id=42")
	id, ok := f.codec.Verify(token, testSlug)
	require.True(t, ok)
	assert.Equal(t, f.codec.HashEmail("voter@example.com", testSlug), id)
}

func TestSignup_AllowList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, func(s *domain.VotingSettings) {
		s.AllowedEmails = " Allowed@Example.com \n\nother@example.com"
	})

	queue := new(mockMailQueue)
	queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(m *domain.Mail) bool {
		return m.To == "allowed@example.com" && m.EventID == f.eventID
	})).Return(nil).Once()
	f.voting.mail = queue

	err := f.voting.Signup(ctx, ports.SignupInput{EventSlug: testSlug, Email: "stranger@example.com"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	// a rejected address looks the same as a malformed one
	err = f.voting.Signup(ctx, ports.SignupInput{EventSlug: testSlug, Email: "not-an-email"})
	var syntaxErr *domain.ValidationError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, syntaxErr.Fields["email"], verr.Fields["email"])

	err = f.voting.Signup(ctx, ports.SignupInput{EventSlug: testSlug, Email: "allowed@example.com"})
	require.NoError(t, err)

	queue.AssertExpectations(t)
	queue.AssertNumberOfCalls(t, "Enqueue", 1)
}

func TestSignup_InvalidEmail(t *testing.T) {
	f := newFixture(t)
	f.configure(t, nil)

	queue := new(mockMailQueue)
	f.voting.mail = queue

	for _, email := range []string{"", "not-an-email", "Name <voter@example.com>"} {
		err := f.voting.Signup(context.Background(), ports.SignupInput{EventSlug: testSlug, Email: email})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, email)
	}
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSignup_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.configure(t, nil)

	queue := new(mockMailQueue)
	queue.On("Enqueue", mock.Anything, mock.Anything).Return(fmt.Errorf("outbox down"))
	f.voting.mail = queue

	err := f.voting.Signup(context.Background(), ports.SignupInput{EventSlug: testSlug, Email: "voter@example.com"})
	assert.ErrorContains(t, err, "outbox down")
}

func TestListSubmissions_InvalidTokenShowsNothing(t *testing.T) {
	f := newFixture(t)
	f.configure(t, nil)
	f.submission(t, "AAA", nil)

	for _, token := range []string{"", "garbage", f.token(t, "voter@example.com") + "x"} {
		ballot, err := f.voting.ListSubmissions(context.Background(), ports.ListInput{EventSlug: testSlug, Token: token})
		require.NoError(t, err)
		assert.False(t, ballot.ValidLink)
		assert.Empty(t, ballot.Submissions)
	}
}

func TestListSubmissions_ScopeAndProjection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	otherType := testutil.CreateSubmissionType(t, f.db, f.eventID, "Workshop")

	f.submission(t, "AAA", func(s *testutil.SubmissionFixture) {
		s.Description = "Long text"
		s.ImageURL = "https://img.example.com/a.png"
		s.Speakers = []string{"Ada"}
	})
	f.submission(t, "BBB", func(s *testutil.SubmissionFixture) { s.State = "accepted" })
	f.submission(t, "CCC", func(s *testutil.SubmissionFixture) { s.SubmissionTypeID = otherType })

	token := f.token(t, "voter@example.com")

	// 1. Defaults: image shown, description hidden, speakers shown
	f.configure(t, nil)
	ballot, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token})
	require.NoError(t, err)
	assert.True(t, ballot.ValidLink)
	require.Len(t, ballot.Submissions, 2)

	byCode := map[string]ports.BallotSubmission{}
	for _, s := range ballot.Submissions {
		byCode[s.Code] = s
	}
	assert.NotContains(t, byCode, "BBB")
	assert.Equal(t, "https://img.example.com/a.png", byCode["AAA"].ImageURL)
	assert.Empty(t, byCode["AAA"].Description)
	assert.Equal(t, []string{"Ada"}, byCode["AAA"].Speakers)
	assert.Equal(t, "Workshop", byCode["CCC"].Type)

	// 2. Flags flipped and type limit applied
	f.configure(t, func(s *domain.VotingSettings) {
		s.AnonymizeSpeakers = true
		s.ShowSessionImage = false
		s.ShowSessionDescription = true
		s.LimitSubmissionTypes = []int64{f.typeID}
	})
	ballot, err = f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token})
	require.NoError(t, err)
	require.Len(t, ballot.Submissions, 1)
	sub := ballot.Submissions[0]
	assert.Equal(t, "AAA", sub.Code)
	assert.Empty(t, sub.ImageURL)
	assert.Equal(t, "Long text", sub.Description)
	assert.Empty(t, sub.Speakers)
}

func TestListSubmissions_PersonalOrderAndScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	for i := range 12 {
		f.submission(t, fmt.Sprintf("S%02d", i), nil)
	}

	codes := func(email string) []string {
		ballot, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: f.token(t, email)})
		require.NoError(t, err)
		var result []string
		for _, s := range ballot.Submissions {
			result = append(result, s.Code)
		}
		return result
	}

	first := codes("a@example.com")
	assert.Equal(t, first, codes("a@example.com"))
	assert.ElementsMatch(t, first, codes("b@example.com"))
	assert.NotEqual(t, first, codes("b@example.com"))

	token := f.token(t, "a@example.com")
	_, err := f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug,
		Token:     token,
		Fields:    map[string]string{"S03-score": "2"},
	})
	require.NoError(t, err)

	ballot, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token})
	require.NoError(t, err)
	for _, s := range ballot.Submissions {
		if s.Code == "S03" {
			require.NotNil(t, s.Score)
			assert.Equal(t, 2, *s.Score)
		} else {
			assert.Nil(t, s.Score)
		}
	}
}

func TestListSubmissions_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	for i := range PageSize + 5 {
		f.submission(t, fmt.Sprintf("P%02d", i), nil)
	}
	token := f.token(t, "voter@example.com")

	page1, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, Page: 1})
	require.NoError(t, err)
	page2, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, Page: 2})
	require.NoError(t, err)

	assert.Len(t, page1.Submissions, PageSize)
	assert.Len(t, page2.Submissions, 5)
	assert.Equal(t, 2, page1.Pages)
	assert.Equal(t, PageSize+5, page1.Total)

	beyond, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, beyond.Page)
}

func TestListSubmissions_Filters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	security := testutil.CreateTrack(t, f.db, f.eventID, "Security")
	data := testutil.CreateTrack(t, f.db, f.eventID, "Data")

	a := f.submission(t, "AAA", func(s *testutil.SubmissionFixture) { s.TrackID = &security })
	f.submission(t, "BBB", func(s *testutil.SubmissionFixture) { s.TrackID = &security })
	f.submission(t, "CCC", func(s *testutil.SubmissionFixture) { s.TrackID = &data })
	token := f.token(t, "voter@example.com")

	// 1. Track filter offered with counts, most popular first
	f.configure(t, nil)
	ballot, err := f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token})
	require.NoError(t, err)
	require.Len(t, ballot.Tracks, 2)
	assert.Equal(t, "Security", ballot.Tracks[0].Name)
	assert.Equal(t, 2, ballot.Tracks[0].Count)
	assert.Equal(t, 1, ballot.Tracks[1].Count)

	ballot, err = f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, TrackIDs: []int64{data}})
	require.NoError(t, err)
	require.Len(t, ballot.Submissions, 1)
	assert.Equal(t, "CCC", ballot.Submissions[0].Code)

	// 2. A single available track disables the filter
	f.configure(t, func(s *domain.VotingSettings) { s.LimitTracks = []int64{security} })
	ballot, err = f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, TrackIDs: []int64{data}})
	require.NoError(t, err)
	assert.Empty(t, ballot.Tracks)
	assert.Len(t, ballot.Submissions, 2)

	// 3. Single submission override
	ballot, err = f.voting.ListSubmissions(ctx, ports.ListInput{EventSlug: testSlug, Token: token, SubmissionID: &a})
	require.NoError(t, err)
	require.Len(t, ballot.Submissions, 1)
	assert.Equal(t, "AAA", ballot.Submissions[0].Code)
	assert.True(t, ballot.FilterActive)
	assert.Equal(t, "https://cfp.example.com/democon/vote/talks/"+token, ballot.RemoveFilterURL)
}

func TestSubmitScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	a := f.submission(t, "AAA", nil)
	b := f.submission(t, "BBB", nil)
	f.submission(t, "RRR", func(s *testutil.SubmissionFixture) { s.State = "rejected" })
	token := f.token(t, "voter@example.com")
	voter := string(f.codec.HashEmail("voter@example.com", testSlug))

	// 1. Valid scores are stored; empty and unknown fields are ignored
	result, err := f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug,
		Token:     token,
		Fields: map[string]string{
			"AAA-score": "3",
			"BBB-score": "",
			"RRR-score": "2",
			"ZZZ-score": "1",
			"action":    "manual",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)

	score, found, err := f.votes.GetScore(ctx, a, voter)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, score)
	_, found, err = f.votes.GetScore(ctx, b, voter)
	require.NoError(t, err)
	assert.False(t, found)

	// 2. Resubmitting the same score is a no-op
	result, err = f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug, Token: token, Fields: map[string]string{"AAA-score": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Saved)
	assert.Equal(t, 1, result.Unchanged)

	// 3. One bad value rejects the whole batch
	_, err = f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug, Token: token,
		Fields: map[string]string{"AAA-score": "1", "BBB-score": "4"},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please assign a score between 1 and 3.", verr.Fields["BBB-score"])

	score, _, err = f.votes.GetScore(ctx, a, voter)
	require.NoError(t, err)
	assert.Equal(t, 3, score)

	// 4. Non-numeric values are rejected too
	_, err = f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug, Token: token, Fields: map[string]string{"AAA-score": "high"},
	})
	assert.ErrorAs(t, err, &verr)
}

func TestSubmitScores_InvalidTokenIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	f.submission(t, "AAA", nil)

	result, err := f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug, Token: "forged", Fields: map[string]string{"AAA-score": "2"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Saved)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM votes`).Scan(&n))
	assert.Zero(t, n)
}

func TestSubmitScores_TokenFromOtherEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	f.submission(t, "AAA", nil)

	foreign, err := f.codec.Sign(f.codec.HashEmail("voter@example.com", "othercon"), "othercon")
	require.NoError(t, err)

	result, err := f.voting.SubmitScores(ctx, ports.SubmitInput{
		EventSlug: testSlug, Token: foreign, Fields: map[string]string{"AAA-score": "2"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Saved)
}
