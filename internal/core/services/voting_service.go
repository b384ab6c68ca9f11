package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/mail"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/identity"
	"github.com/vncsmyrnk/publicvoting/internal/core/ordering"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

const PageSize = 20

const signupMailSubject = "Public voting registration"

const signupMailText = `Hi,

you have registered to vote for submissions for %[1]s.
Please confirm that this email address is valid by following this link:

%[2]s

If you did not register for voting, you can ignore this email.

Thank you for participating in the vote!

The %[1]s organisers
`

type votingService struct {
	events      ports.EventRepository
	submissions ports.SubmissionRepository
	settings    ports.SettingsRepository
	votes       ports.VoteRepository
	mail        ports.MailQueue
	codec       *identity.Codec
	baseURL     string
	now         func() time.Time
}

func NewVotingService(
	events ports.EventRepository,
	submissions ports.SubmissionRepository,
	settings ports.SettingsRepository,
	votes ports.VoteRepository,
	mail ports.MailQueue,
	codec *identity.Codec,
	baseURL string,
) ports.VotingService {
	return &votingService{
		events:      events,
		submissions: submissions,
		settings:    settings,
		votes:       votes,
		mail:        mail,
		codec:       codec,
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         time.Now,
	}
}

// openVoting resolves the event and its settings and checks the voting
// window. Unknown events, missing settings and closed windows all map to
// ErrVotingUnavailable so callers cannot tell them apart.
func (s *votingService) openVoting(ctx context.Context, slug string) (*domain.Event, *domain.VotingSettings, error) {
	event, err := s.events.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, nil, domain.ErrVotingUnavailable
		}
		return nil, nil, err
	}

	settings, err := s.settings.GetByEvent(ctx, event.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, nil, domain.ErrVotingUnavailable
		}
		return nil, nil, err
	}

	if !settings.IsOpen(s.now()) {
		return nil, nil, domain.ErrVotingUnavailable
	}
	return event, settings, nil
}

func (s *votingService) Overview(ctx context.Context, eventSlug string) (*ports.VotingOverview, error) {
	event, settings, err := s.openVoting(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	return &ports.VotingOverview{Event: *event, Text: settings.Text}, nil
}

func (s *votingService) Signup(ctx context.Context, input ports.SignupInput) error {
	event, settings, err := s.openVoting(ctx, input.EventSlug)
	if err != nil {
		return err
	}

	email := strings.TrimSpace(input.Email)
	verr := domain.NewValidationError()
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email || !settings.AllowsEmail(email) {
		verr.Add("email", "Please enter a valid email address.")
	}
	if err := verr.ErrOrNil(); err != nil {
		return err
	}

	// The link carries the signed hash rather than the hash itself, so nobody
	// can forge a link for an address that was never confirmed by mail.
	token, err := s.codec.Sign(s.codec.HashEmail(email, event.Slug), event.Slug)
	if err != nil {
		return fmt.Errorf("failed to sign voting link: %w", err)
	}

	link := fmt.Sprintf("%s/%s/vote/talks/%s", s.baseURL, url.PathEscape(event.Slug), token)
	if input.SubmissionID != nil {
		link += "?submission_id=" + strconv.FormatInt(*input.SubmissionID, 10)
	}

	msg := &domain.Mail{
		ID:        uuid.New(),
		EventID:   event.ID,
		To:        email,
		Subject:   signupMailSubject,
		Body:      fmt.Sprintf(signupMailText, event.Name, link),
		CreatedAt: s.now(),
	}
	if err := s.mail.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("failed to queue signup mail: %w", err)
	}

	slog.InfoContext(ctx, "voting signup mail queued", "event", event.Slug, "mail_id", msg.ID)
	return nil
}

func (s *votingService) ListSubmissions(ctx context.Context, input ports.ListInput) (*ports.Ballot, error) {
	event, settings, err := s.openVoting(ctx, input.EventSlug)
	if err != nil {
		return nil, err
	}

	ballot := &ports.Ballot{
		Event:        *event,
		Text:         settings.Text,
		ScoreChoices: settings.ScoreChoices(),
		Submissions:  []ports.BallotSubmission{},
		FilterActive: input.SubmissionID != nil,
		Page:         1,
		Pages:        1,
	}

	voter, ok := s.codec.Verify(input.Token, event.Slug)
	if !ok {
		// A broken or forged link shows an empty page instead of an error.
		return ballot, nil
	}
	ballot.ValidLink = true
	if input.SubmissionID != nil {
		ballot.RemoveFilterURL = fmt.Sprintf("%s/%s/vote/talks/%s", s.baseURL, url.PathEscape(event.Slug), input.Token)
	}

	all, err := s.submissions.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	tracks, err := s.events.ListTracks(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	types, err := s.events.ListSubmissionTypes(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission types: %w", err)
	}

	scope := settings.InScope(all)

	available := settings.AvailableTracks(tracks)
	if len(available) > 1 {
		ballot.Tracks = trackFilters(available, scope)
		scope = filterByTracks(scope, available, input.TrackIDs)
	}

	if input.SubmissionID != nil {
		scope = slices.DeleteFunc(scope, func(sub domain.Submission) bool {
			return sub.ID != *input.SubmissionID
		})
	}

	byID := make(map[int64]domain.Submission, len(scope))
	ids := make([]int64, 0, len(scope))
	for _, sub := range scope {
		byID[sub.ID] = sub
		ids = append(ids, sub.ID)
	}
	ordered := ordering.Personalize(voter, ids)

	scores, err := s.votes.ScoresFor(ctx, event.ID, string(voter))
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	ballot.Total = len(ordered)
	ballot.Pages = max(1, (len(ordered)+PageSize-1)/PageSize)
	ballot.Page = min(max(1, input.Page), ballot.Pages)
	from := (ballot.Page - 1) * PageSize
	to := min(from+PageSize, len(ordered))

	trackNames := make(map[int64]string, len(tracks))
	for _, t := range tracks {
		trackNames[t.ID] = t.Name
	}
	typeNames := make(map[int64]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	for _, id := range ordered[from:to] {
		sub := byID[id]
		entry := ports.BallotSubmission{
			ID:       sub.ID,
			Code:     sub.Code,
			Title:    sub.Title,
			Abstract: sub.Abstract,
			Type:     typeNames[sub.SubmissionTypeID],
		}
		if sub.TrackID != nil {
			entry.Track = trackNames[*sub.TrackID]
		}
		if settings.ShowSessionDescription {
			entry.Description = sub.Description
		}
		if settings.ShowSessionImage {
			entry.ImageURL = sub.ImageURL
		}
		if !settings.AnonymizeSpeakers {
			entry.Speakers = sub.Speakers
		}
		if score, ok := scores[id]; ok {
			entry.Score = &score
		}
		ballot.Submissions = append(ballot.Submissions, entry)
	}

	return ballot, nil
}

func trackFilters(available []domain.Track, scope []domain.Submission) []ports.TrackFilter {
	counts := make(map[int64]int)
	for _, sub := range scope {
		if sub.TrackID != nil {
			counts[*sub.TrackID]++
		}
	}

	filters := make([]ports.TrackFilter, 0, len(available))
	for _, t := range available {
		filters = append(filters, ports.TrackFilter{Track: t, Count: counts[t.ID]})
	}
	slices.SortStableFunc(filters, func(a, b ports.TrackFilter) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return filters
}

// filterByTracks keeps submissions in the requested tracks. Requested IDs
// outside of the available tracks are ignored.
func filterByTracks(scope []domain.Submission, available []domain.Track, requested []int64) []domain.Submission {
	var wanted []int64
	for _, t := range available {
		if slices.Contains(requested, t.ID) {
			wanted = append(wanted, t.ID)
		}
	}
	if len(wanted) == 0 {
		return scope
	}
	return slices.DeleteFunc(scope, func(sub domain.Submission) bool {
		return sub.TrackID == nil || !slices.Contains(wanted, *sub.TrackID)
	})
}

type parsedScore struct {
	submission domain.Submission
	score      int
}

func (s *votingService) SubmitScores(ctx context.Context, input ports.SubmitInput) (*ports.SubmitResult, error) {
	event, settings, err := s.openVoting(ctx, input.EventSlug)
	if err != nil {
		return nil, err
	}

	result := &ports.SubmitResult{}
	voter, ok := s.codec.Verify(input.Token, event.Slug)
	if !ok {
		return result, nil
	}

	all, err := s.submissions.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	byCode := make(map[string]domain.Submission)
	for _, sub := range settings.InScope(all) {
		byCode[sub.Code] = sub
	}

	verr := domain.NewValidationError()
	var parsed []parsedScore
	for _, key := range slices.Sorted(maps.Keys(input.Fields)) {
		code, ok := strings.CutSuffix(key, "-score")
		if !ok {
			continue
		}
		sub, ok := byCode[code]
		if !ok {
			// stale or forged field
			continue
		}
		value := strings.TrimSpace(input.Fields[key])
		if value == "" {
			continue
		}
		score, err := strconv.Atoi(value)
		if err != nil || !settings.ValidScore(score) {
			verr.Add(key, fmt.Sprintf("Please assign a score between %d and %d.", settings.MinScore, settings.MaxScore))
			continue
		}
		parsed = append(parsed, parsedScore{submission: sub, score: score})
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	current, err := s.votes.ScoresFor(ctx, event.ID, string(voter))
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	for _, p := range parsed {
		if stored, ok := current[p.submission.ID]; ok && stored == p.score {
			result.Unchanged++
			continue
		}
		vote := &domain.Vote{
			ID:            uuid.New(),
			SubmissionID:  p.submission.ID,
			VoterIdentity: string(voter),
			Score:         p.score,
			Timestamp:     s.now(),
		}
		changed, err := s.votes.Upsert(ctx, vote)
		if err != nil {
			return nil, fmt.Errorf("failed to save vote for %s: %w", p.submission.Code, err)
		}
		if changed {
			result.Saved++
		} else {
			result.Unchanged++
		}
	}

	return result, nil
}
