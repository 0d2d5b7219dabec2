package usecase

import (
	"context"
	"sync"
	"time"

	"jobscout/internal/domain/application"
	"jobscout/internal/domain/billing"
	"jobscout/internal/domain/job"
	"jobscout/internal/domain/match"
	"jobscout/internal/domain/notification"
	"jobscout/internal/domain/user"
	"jobscout/internal/llm"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return user.User{}, repository.ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) ListWithPreferences(ctx context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]user.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

type fakeJobRepo struct {
	byID map[uuid.UUID]job.Posting
}

func newFakeJobRepo(postings ...job.Posting) *fakeJobRepo {
	f := &fakeJobRepo{byID: make(map[uuid.UUID]job.Posting)}
	for _, p := range postings {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeJobRepo) Upsert(ctx context.Context, p job.Posting) (bool, error) {
	f.byID[p.ID] = p
	return true, nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	p, ok := f.byID[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	return p, nil
}

func (f *fakeJobRepo) List(ctx context.Context, limit, offset int) ([]job.Posting, error) {
	out := make([]job.Posting, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeJobRepo) ListUnmatchedForUser(ctx context.Context, userID uuid.UUID, location string, limit int) ([]job.Posting, error) {
	return f.List(ctx, limit, 0)
}

func (f *fakeJobRepo) LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error) {
	return nil, nil
}

func (f *fakeJobRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeSubscriptionRepo struct {
	byUser       map[uuid.UUID]billing.Subscription
	recIncrement int
	cvIncrement  int
}

func newFakeSubscriptionRepo(subs ...billing.Subscription) *fakeSubscriptionRepo {
	f := &fakeSubscriptionRepo{byUser: make(map[uuid.UUID]billing.Subscription)}
	for _, s := range subs {
		f.byUser[s.UserID] = s
	}
	return f
}

func (f *fakeSubscriptionRepo) GetByUser(ctx context.Context, userID uuid.UUID) (billing.Subscription, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return billing.Subscription{}, repository.ErrSubscriptionNotFound
	}
	return s, nil
}

func (f *fakeSubscriptionRepo) Upsert(ctx context.Context, s billing.Subscription) (billing.Subscription, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.RecommendationsUsed = 0
	s.CVGenerationsUsed = 0
	f.byUser[s.UserID] = s
	return s, nil
}

func (f *fakeSubscriptionRepo) IncrementRecommendationsUsed(ctx context.Context, userID uuid.UUID, n int) error {
	s := f.byUser[userID]
	s.RecommendationsUsed += n
	f.byUser[userID] = s
	f.recIncrement += n
	return nil
}

func (f *fakeSubscriptionRepo) IncrementCVGenerationsUsed(ctx context.Context, userID uuid.UUID) error {
	s := f.byUser[userID]
	s.CVGenerationsUsed++
	f.byUser[userID] = s
	f.cvIncrement++
	return nil
}

func (f *fakeSubscriptionRepo) ListExpiring(ctx context.Context, threshold time.Time) ([]billing.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionRepo) MarkNotified(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeSubscriptionRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeMatchRepo struct {
	items []repository.MatchWithJob
}

func (f *fakeMatchRepo) BulkInsert(ctx context.Context, matches []match.Match) (int64, error) {
	for _, m := range matches {
		f.items = append(f.items, repository.MatchWithJob{Match: m})
	}
	return int64(len(matches)), nil
}

func (f *fakeMatchRepo) ListByUser(ctx context.Context, userID uuid.UUID, includeHidden bool, limit, offset int) ([]repository.MatchWithJob, error) {
	var out []repository.MatchWithJob
	for _, it := range f.items {
		if it.Match.UserID != userID {
			continue
		}
		if it.Match.IsHidden && !includeHidden {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (match.Match, error) {
	for _, it := range f.items {
		if it.Match.ID == id {
			return it.Match, nil
		}
	}
	return match.Match{}, repository.ErrMatchNotFound
}

func (f *fakeMatchRepo) SetBookmarked(ctx context.Context, userID, matchID uuid.UUID, bookmarked bool) error {
	for i, it := range f.items {
		if it.Match.ID == matchID && it.Match.UserID == userID {
			f.items[i].Match.IsBookmarked = bookmarked
			return nil
		}
	}
	return repository.ErrMatchNotFound
}

func (f *fakeMatchRepo) SetHidden(ctx context.Context, userID, matchID uuid.UUID, hidden bool) error {
	for i, it := range f.items {
		if it.Match.ID == matchID && it.Match.UserID == userID {
			f.items[i].Match.IsHidden = hidden
			return nil
		}
	}
	return repository.ErrMatchNotFound
}

type fakeApplicationRepo struct {
	byID map[uuid.UUID]application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{byID: make(map[uuid.UUID]application.Application)}
}

func (f *fakeApplicationRepo) GetOrCreate(ctx context.Context, userID, jobID uuid.UUID) (application.Application, error) {
	for _, a := range f.byID {
		if a.UserID == userID && a.JobID == jobID {
			return a, nil
		}
	}
	a := application.Application{
		ID:               uuid.New(),
		UserID:           userID,
		JobID:            jobID,
		Status:           application.StatusNotApplied,
		LastStatusChange: time.Now(),
		CreatedAt:        time.Now(),
	}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, ok := f.byID[id]
	if !ok {
		return application.Application{}, repository.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeApplicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	var out []application.Application
	for _, a := range f.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status, appliedAt *time.Time) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	a.Status = status
	if appliedAt != nil {
		a.AppliedAt = appliedAt
	}
	a.LastStatusChange = time.Now()
	f.byID[id] = a
	return nil
}

func (f *fakeApplicationRepo) ListStaleApplied(ctx context.Context, cutoff time.Time) ([]application.Application, error) {
	return nil, nil
}

func (f *fakeApplicationRepo) MarkNotified(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakePreferenceRepo struct {
	prefs  map[uuid.UUID]user.Preferences
	titles map[uuid.UUID][]string
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{
		prefs:  make(map[uuid.UUID]user.Preferences),
		titles: make(map[uuid.UUID][]string),
	}
}

func (f *fakePreferenceRepo) Get(ctx context.Context, userID uuid.UUID) (user.Preferences, error) {
	p, ok := f.prefs[userID]
	if !ok {
		return user.Preferences{}, repository.ErrPreferencesNotFound
	}
	return p, nil
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, p user.Preferences) (user.Preferences, error) {
	p.UpdatedAt = time.Now()
	f.prefs[p.UserID] = p
	return p, nil
}

func (f *fakePreferenceRepo) GetTitles(ctx context.Context, userID uuid.UUID) (user.ExtractedTitles, error) {
	t, ok := f.titles[userID]
	if !ok {
		return user.ExtractedTitles{}, repository.ErrTitlesNotFound
	}
	return user.ExtractedTitles{UserID: userID, Titles: t}, nil
}

func (f *fakePreferenceRepo) SaveTitles(ctx context.Context, userID uuid.UUID, titles []string) error {
	f.titles[userID] = titles
	return nil
}

func (f *fakePreferenceRepo) DistinctLocations(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakePreferenceRepo) DistinctTitles(ctx context.Context) ([]string, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	inserted []notification.Notification
}

func (f *fakeNotificationRepo) Insert(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.inserted = append(f.inserted, n)
	return n, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]notification.Notification, error) {
	return f.inserted, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(f.inserted), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(f.inserted)), nil
}

func (f *fakeNotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// fakeCompleter returns a canned completion and counts calls.
type fakeCompleter struct {
	response string
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	return f.response, nil
}
