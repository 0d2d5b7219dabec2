package cleanup

import (
	"context"
	"time"

	"jobscout/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	postingRetention      = 30 * 24 * time.Hour
	notificationRetention = 30 * 24 * time.Hour
)

// Cleaner prunes aged rows: postings past the retention window that nobody
// bookmarked, and read notifications.
type Cleaner struct {
	jobs          repository.JobRepository
	notifications repository.NotificationRepository
	log           *logrus.Logger
	now           func() time.Time
}

func New(jobs repository.JobRepository, notifications repository.NotificationRepository, log *logrus.Logger) *Cleaner {
	return &Cleaner{
		jobs:          jobs,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

func (c *Cleaner) Run(ctx context.Context) error {
	now := c.now().UTC()

	deleted, err := c.jobs.DeleteOlderThan(ctx, now.Add(-postingRetention))
	if err != nil {
		return err
	}
	c.log.WithField("deleted_jobs", deleted).Info("old postings removed")

	pruned, err := c.notifications.DeleteReadOlderThan(ctx, now.Add(-notificationRetention))
	if err != nil {
		return err
	}
	c.log.WithField("deleted_notifications", pruned).Info("old notifications removed")
	return nil
}
