package usecase

import (
	"context"
	"errors"
	"time"

	"jobscout/internal/domain/billing"
	"jobscout/internal/payments"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

type MatchUsecase struct {
	matches repository.MatchRepository
	subs    repository.SubscriptionRepository

	now func() time.Time
}

func NewMatchUsecase(matches repository.MatchRepository, subs repository.SubscriptionRepository) *MatchUsecase {
	return &MatchUsecase{matches: matches, subs: subs, now: time.Now}
}

// List returns the user's recommendations newest-score first. Serving them
// counts against the plan's recommendation allowance.
func (u *MatchUsecase) List(ctx context.Context, userID uuid.UUID, includeHidden bool, limit, offset int) ([]repository.MatchWithJob, error) {
	sub, err := u.activeSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits := payments.LimitsFor(sub.Plan)
	if !payments.WithinLimit(limits.JobRecommendations, sub.RecommendationsUsed) {
		return nil, ErrLimitReached
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := u.matches.ListByUser(ctx, userID, includeHidden, limit, offset)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := u.subs.IncrementRecommendationsUsed(ctx, userID, len(items)); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (u *MatchUsecase) SetBookmarked(ctx context.Context, userID, matchID uuid.UUID, bookmarked bool) error {
	err := u.matches.SetBookmarked(ctx, userID, matchID, bookmarked)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return ErrNotFound
	}
	return err
}

func (u *MatchUsecase) SetHidden(ctx context.Context, userID, matchID uuid.UUID, hidden bool) error {
	err := u.matches.SetHidden(ctx, userID, matchID, hidden)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return ErrNotFound
	}
	return err
}

func (u *MatchUsecase) activeSubscription(ctx context.Context, userID uuid.UUID) (billing.Subscription, error) {
	sub, err := u.subs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return billing.Subscription{}, ErrNoActiveSubscription
		}
		return billing.Subscription{}, err
	}
	if !sub.IsValid(u.now()) {
		return billing.Subscription{}, ErrNoActiveSubscription
	}
	return sub, nil
}
