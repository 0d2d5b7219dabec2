package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/match"
	"jobscout/internal/domain/notification"
	"jobscout/internal/domain/user"
	"jobscout/internal/llm"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Decode failures are typed so callers can tell a bad model answer from an
// infrastructure error. Any of them aborts the affected user's cycle only.
var (
	ErrMalformedResponse = errors.New("malformed matching response")
	ErrScoreOutOfRange   = errors.New("match score out of range")
	ErrUnknownJobID      = errors.New("unknown job id in matching response")
)

const candidateCap = 400

// Announcer is told when new matches land for a user. The notifier
// satisfies it; nil disables announcements.
type Announcer interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message string) error
}

// Matcher scores unmatched postings against each user's preferences with a
// single completion call per user.
type Matcher struct {
	users    user.Repository
	prefs    repository.PreferenceRepository
	jobs     repository.JobRepository
	matches  repository.MatchRepository
	llm      llm.Completer
	announce Announcer
	log      *logrus.Logger
}

func New(users user.Repository, prefs repository.PreferenceRepository, jobs repository.JobRepository, matches repository.MatchRepository, completer llm.Completer, announce Announcer, log *logrus.Logger) *Matcher {
	return &Matcher{
		users:    users,
		prefs:    prefs,
		jobs:     jobs,
		matches:  matches,
		llm:      completer,
		announce: announce,
		log:      log,
	}
}

// Run matches every user with preferences. A failed user never stops the
// loop; eligibility is defined by absent match rows, so the next run
// reattempts whatever this one missed.
func (m *Matcher) Run(ctx context.Context) (int, error) {
	users, err := m.users.ListWithPreferences(ctx)
	if err != nil {
		return 0, err
	}

	var total int
	for _, u := range users {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := m.MatchUser(ctx, u.ID)
		total += n
		if err != nil {
			m.log.WithField("user_id", u.ID).WithError(err).Warn("matching failed for user")
		}
	}
	return total, nil
}

// MatchUser runs one matching cycle for a single user and returns how many
// matches were persisted.
func (m *Matcher) MatchUser(ctx context.Context, userID uuid.UUID) (int, error) {
	prefs, err := m.prefs.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	candidates, err := m.jobs.ListUnmatchedForUser(ctx, userID, locationFilter(prefs), candidateCap)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	raw, err := m.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: matchSystemPrompt},
		{Role: llm.RoleUser, Content: buildMatchPrompt(prefs, candidates)},
	})
	if err != nil {
		return 0, err
	}

	results, err := decodeMatchResponse(raw, candidates)
	if err != nil {
		return 0, err
	}

	matches := make([]match.Match, 0, len(results))
	for _, r := range results {
		if r.MatchScore < match.MinScore {
			continue
		}
		matches = append(matches, match.Match{
			UserID:    userID,
			JobID:     uuid.MustParse(r.JobID),
			Score:     r.MatchScore,
			Rationale: r.Rationale,
		})
	}
	if len(matches) == 0 {
		return 0, nil
	}

	created, err := m.matches.BulkInsert(ctx, matches)
	if err != nil {
		return int(created), err
	}

	if m.announce != nil && created > 0 {
		message := fmt.Sprintf("%d new job matches are waiting for you.", created)
		if created == 1 {
			message = "A new job match is waiting for you."
		}
		if err := m.announce.Notify(ctx, userID, notification.TypeJobMatch, "New job matches", message); err != nil {
			m.log.WithField("user_id", userID).WithError(err).Warn("match announcement failed")
		}
	}
	return int(created), nil
}

// locationFilter narrows candidates by the first preferred location only.
// Remote-only users see everything.
func locationFilter(p user.Preferences) string {
	if p.RemoteOnly || len(p.Locations) == 0 {
		return ""
	}
	return p.Locations[0]
}

const matchSystemPrompt = `You are a job matching assistant. Given a candidate profile and a list of jobs, ` +
	`return ONLY a JSON array of objects with keys "job_id", "match_score" (0-100) and "rationale". ` +
	`Include only jobs scoring 75 or above. Return [] when nothing qualifies.`

func buildMatchPrompt(p user.Preferences, candidates []job.Posting) string {
	var b strings.Builder
	b.WriteString("Candidate profile:\n")
	fmt.Fprintf(&b, "- Desired roles: %s\n", strings.Join(p.Roles, ", "))
	fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(&b, "- Preferred locations: %s\n", strings.Join(p.Locations, ", "))
	fmt.Fprintf(&b, "- Industries: %s\n", strings.Join(p.Industries, ", "))
	fmt.Fprintf(&b, "- Years of experience: %d\n", p.YearsOfExperience)
	fmt.Fprintf(&b, "- Remote only: %t\n\n", p.RemoteOnly)

	b.WriteString("Jobs:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", c.ID, c.Title, c.Company, c.Location)
	}
	return b.String()
}

type matchResult struct {
	JobID      string  `json:"job_id"`
	MatchScore float64 `json:"match_score"`
	Rationale  string  `json:"rationale"`
}

func decodeMatchResponse(raw string, candidates []job.Posting) ([]matchResult, error) {
	cleaned := llm.StripFences(raw)

	var results []matchResult
	if err := json.Unmarshal([]byte(cleaned), &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID.String()] = struct{}{}
	}

	for _, r := range results {
		if r.MatchScore < 0 || r.MatchScore > 100 {
			return nil, fmt.Errorf("%w: %s scored %.1f", ErrScoreOutOfRange, r.JobID, r.MatchScore)
		}
		if _, ok := known[r.JobID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJobID, r.JobID)
		}
	}
	return results, nil
}
