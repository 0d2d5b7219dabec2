package notifier

import (
	"context"
	"fmt"
	"time"

	"jobscout/internal/domain/notification"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	staleApplicationAge = 7 * 24 * time.Hour
	expiryWarningWindow = 3 * 24 * time.Hour
)

// Pusher delivers a notification to a connected user. Fire-and-forget:
// delivery failures are the transport's problem, the row is the record.
type Pusher interface {
	Push(userID uuid.UUID, n notification.Notification)
}

// NopPusher drops pushes. Used by workers with no WebSocket hub.
type NopPusher struct{}

func (NopPusher) Push(userID uuid.UUID, n notification.Notification) {}

// Notifier produces notification rows for the periodic checks and pushes
// them to connected clients.
type Notifier struct {
	apps          repository.ApplicationRepository
	subs          repository.SubscriptionRepository
	jobs          repository.JobRepository
	notifications repository.NotificationRepository
	pusher        Pusher
	log           *logrus.Logger
	now           func() time.Time
}

func New(apps repository.ApplicationRepository, subs repository.SubscriptionRepository, jobs repository.JobRepository, notifications repository.NotificationRepository, pusher Pusher, log *logrus.Logger) *Notifier {
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &Notifier{
		apps:          apps,
		subs:          subs,
		jobs:          jobs,
		notifications: notifications,
		pusher:        pusher,
		log:           log,
		now:           time.Now,
	}
}

// Notify stores a notification and pushes it to the user's group.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message string) error {
	stored, err := n.notifications.Insert(ctx, notification.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	})
	if err != nil {
		return err
	}
	n.pusher.Push(userID, stored)
	return nil
}

// RemindStaleApplications nudges users whose applications sat in APPLIED
// for over a week without a status change. Each application is reminded
// once.
func (n *Notifier) RemindStaleApplications(ctx context.Context) (int, error) {
	cutoff := n.now().UTC().Add(-staleApplicationAge)
	stale, err := n.apps.ListStaleApplied(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var sent int
	for _, app := range stale {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		title := "Any update on your application?"
		message := "You applied over a week ago. Consider following up with the employer."
		if posting, err := n.jobs.GetByID(ctx, app.JobID); err == nil {
			message = fmt.Sprintf("You applied for %q at %s over a week ago. Consider following up.", posting.Title, posting.Company)
		}

		if err := n.Notify(ctx, app.UserID, notification.TypeApplicationReminder, title, message); err != nil {
			n.log.WithField("application_id", app.ID).WithError(err).Warn("stale application reminder failed")
			continue
		}
		if err := n.apps.MarkNotified(ctx, app.ID); err != nil {
			n.log.WithField("application_id", app.ID).WithError(err).Warn("mark application notified failed")
			continue
		}
		sent++
	}
	return sent, nil
}

// WarnExpiringSubscriptions notifies users whose subscriptions end within
// three days, then deactivates anything already past its end date.
func (n *Notifier) WarnExpiringSubscriptions(ctx context.Context) (int, error) {
	now := n.now().UTC()
	expiring, err := n.subs.ListExpiring(ctx, now.Add(expiryWarningWindow))
	if err != nil {
		return 0, err
	}

	var sent int
	for _, sub := range expiring {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		days := int(sub.EndDate.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		message := fmt.Sprintf("Your %s subscription expires in %d day(s). Renew to keep your recommendations coming.", sub.Plan, days)

		if err := n.Notify(ctx, sub.UserID, notification.TypeSubscription, "Subscription expiring soon", message); err != nil {
			n.log.WithField("subscription_id", sub.ID).WithError(err).Warn("expiry warning failed")
			continue
		}
		if err := n.subs.MarkNotified(ctx, sub.ID); err != nil {
			n.log.WithField("subscription_id", sub.ID).WithError(err).Warn("mark subscription notified failed")
			continue
		}
		sent++
	}

	if _, err := n.subs.DeactivateExpired(ctx, now); err != nil {
		n.log.WithError(err).Warn("deactivate expired subscriptions failed")
	}
	return sent, nil
}
