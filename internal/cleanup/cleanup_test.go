package cleanup

import (
	"context"
	"testing"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type fakeJobRepo struct {
	postings   map[uuid.UUID]job.Posting
	bookmarked map[uuid.UUID]bool
	cutoff     time.Time
}

func (r *fakeJobRepo) Upsert(ctx context.Context, p job.Posting) (bool, error) { return false, nil }
func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	return r.postings[id], nil
}
func (r *fakeJobRepo) List(ctx context.Context, limit, offset int) ([]job.Posting, error) {
	return nil, nil
}
func (r *fakeJobRepo) ListUnmatchedForUser(ctx context.Context, userID uuid.UUID, location string, limit int) ([]job.Posting, error) {
	return nil, nil
}
func (r *fakeJobRepo) LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error) {
	return nil, nil
}

func (r *fakeJobRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	var deleted int64
	for id, p := range r.postings {
		if !p.DatePosted.Before(cutoff) || r.bookmarked[id] {
			continue
		}
		delete(r.postings, id)
		deleted++
	}
	return deleted, nil
}

type fakeNotificationRepo struct {
	cutoff time.Time
}

func (r *fakeNotificationRepo) Insert(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	return n, nil
}
func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]notification.Notification, error) {
	return nil, nil
}
func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}
func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) error { return nil }
func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}
func (r *fakeNotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	return 0, nil
}

func posting(age time.Duration, now time.Time) job.Posting {
	return job.Posting{ID: uuid.New(), DatePosted: now.Add(-age)}
}

func TestRunRemovesOnlyAgedUnbookmarkedPostings(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)

	aged := posting(45*24*time.Hour, fixed)
	agedBookmarked := posting(60*24*time.Hour, fixed)
	fresh := posting(10*24*time.Hour, fixed)

	jobs := &fakeJobRepo{
		postings: map[uuid.UUID]job.Posting{
			aged.ID:           aged,
			agedBookmarked.ID: agedBookmarked,
			fresh.ID:          fresh,
		},
		bookmarked: map[uuid.UUID]bool{agedBookmarked.ID: true},
	}
	notifications := &fakeNotificationRepo{}

	c := New(jobs, notifications, testLogger())
	c.now = func() time.Time { return fixed }

	require.NoError(t, c.Run(context.Background()))

	wantCutoff := fixed.Add(-30 * 24 * time.Hour)
	require.Equal(t, wantCutoff, jobs.cutoff)
	require.Equal(t, wantCutoff, notifications.cutoff)

	require.NotContains(t, jobs.postings, aged.ID)
	require.Contains(t, jobs.postings, agedBookmarked.ID)
	require.Contains(t, jobs.postings, fresh.ID)
}
