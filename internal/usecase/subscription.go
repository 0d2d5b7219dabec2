package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobscout/internal/domain/billing"
	"jobscout/internal/domain/notification"
	"jobscout/internal/domain/user"
	"jobscout/internal/notifier"
	"jobscout/internal/payments"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SubscriptionView is the subscription plus the plan limits the client
// renders usage bars against.
type SubscriptionView struct {
	Subscription billing.Subscription `json:"subscription"`
	Limits       payments.PlanLimits  `json:"limits"`
}

type SubscriptionUsecase struct {
	subs     repository.SubscriptionRepository
	users    user.Repository
	gateway  *payments.Client
	notifier *notifier.Notifier
	log      *logrus.Logger

	now func() time.Time
}

func NewSubscriptionUsecase(subs repository.SubscriptionRepository, users user.Repository, gateway *payments.Client, n *notifier.Notifier, log *logrus.Logger) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		subs:     subs,
		users:    users,
		gateway:  gateway,
		notifier: n,
		log:      log,
		now:      time.Now,
	}
}

func (u *SubscriptionUsecase) Get(ctx context.Context, userID uuid.UUID) (SubscriptionView, error) {
	sub, err := u.subs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return SubscriptionView{}, ErrNotFound
		}
		return SubscriptionView{}, err
	}
	return SubscriptionView{Subscription: sub, Limits: payments.LimitsFor(sub.Plan)}, nil
}

// Checkout opens a hosted payment session for the chosen plan and cycle.
func (u *SubscriptionUsecase) Checkout(ctx context.Context, userID uuid.UUID, plan billing.Plan, cycle billing.Cycle, redirectURL string) (payments.CheckoutSession, error) {
	if !plan.Valid() || !cycle.Valid() {
		return payments.CheckoutSession{}, ErrInvalidInput
	}

	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return payments.CheckoutSession{}, ErrNotFound
		}
		return payments.CheckoutSession{}, err
	}

	firstName, lastName := splitName(usr.Name)
	return u.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		UserID:      userID,
		Email:       usr.Email,
		FirstName:   firstName,
		LastName:    lastName,
		Plan:        plan,
		Cycle:       cycle,
		RedirectURL: redirectURL,
	})
}

// HandleWebhook activates or renews a subscription from a gateway payment
// event. Non-successful events are acknowledged and dropped.
func (u *SubscriptionUsecase) HandleWebhook(ctx context.Context, event payments.WebhookEvent) error {
	if !event.Successful() {
		u.log.WithFields(logrus.Fields{
			"invoice": event.InvoiceID,
			"state":   event.State,
		}).Info("ignoring non-successful payment event")
		return nil
	}

	userID, err := uuid.Parse(event.Metadata["user_id"])
	if err != nil {
		return ErrInvalidInput
	}
	plan := billing.Plan(event.Metadata["plan"])
	cycle := billing.Cycle(event.Metadata["billing_cycle"])
	if !plan.Valid() || !cycle.Valid() {
		return ErrInvalidInput
	}

	days, err := payments.CycleDays(cycle)
	if err != nil {
		return ErrInvalidInput
	}

	start := u.now().UTC()
	sub, err := u.subs.Upsert(ctx, billing.Subscription{
		UserID:       userID,
		Plan:         plan,
		BillingCycle: cycle,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, days),
		IsActive:     true,
		PaymentID:    event.InvoiceID,
	})
	if err != nil {
		return err
	}

	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, userID, notification.TypeSubscription,
			"Subscription active",
			"Your "+string(plan)+" plan is active until "+sub.EndDate.Format("Jan 2, 2006")+".",
		); err != nil {
			u.log.WithError(err).Warn("subscription notification failed")
		}
	}
	return nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
