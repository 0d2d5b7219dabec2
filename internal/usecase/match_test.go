package usecase

import (
	"context"
	"testing"
	"time"

	"jobscout/internal/domain/billing"
	"jobscout/internal/domain/match"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func activeSub(userID uuid.UUID, plan billing.Plan, used int) billing.Subscription {
	return billing.Subscription{
		ID:                  uuid.New(),
		UserID:              userID,
		Plan:                plan,
		BillingCycle:        billing.CycleMonthly,
		StartDate:           time.Now().Add(-24 * time.Hour),
		EndDate:             time.Now().Add(29 * 24 * time.Hour),
		IsActive:            true,
		RecommendationsUsed: used,
	}
}

func seedMatches(repo *fakeMatchRepo, userID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		repo.items = append(repo.items, repository.MatchWithJob{
			Match: match.Match{ID: uuid.New(), UserID: userID, JobID: uuid.New(), Score: 80},
		})
	}
}

func TestListRequiresActiveSubscription(t *testing.T) {
	userID := uuid.New()
	matches := &fakeMatchRepo{}
	seedMatches(matches, userID, 3)

	uc := NewMatchUsecase(matches, newFakeSubscriptionRepo())
	_, err := uc.List(context.Background(), userID, false, 0, 0)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestListRejectsExpiredSubscription(t *testing.T) {
	userID := uuid.New()
	sub := activeSub(userID, billing.PlanBasic, 0)
	sub.EndDate = time.Now().Add(-time.Hour)

	uc := NewMatchUsecase(&fakeMatchRepo{}, newFakeSubscriptionRepo(sub))
	_, err := uc.List(context.Background(), userID, false, 0, 0)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestListCountsServedRecommendations(t *testing.T) {
	userID := uuid.New()
	matches := &fakeMatchRepo{}
	seedMatches(matches, userID, 3)
	subs := newFakeSubscriptionRepo(activeSub(userID, billing.PlanBasic, 0))

	uc := NewMatchUsecase(matches, subs)
	items, err := uc.List(context.Background(), userID, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, 3, subs.recIncrement)
}

func TestListBasicPlanLimitReached(t *testing.T) {
	userID := uuid.New()
	matches := &fakeMatchRepo{}
	seedMatches(matches, userID, 1)
	subs := newFakeSubscriptionRepo(activeSub(userID, billing.PlanBasic, 50))

	uc := NewMatchUsecase(matches, subs)
	_, err := uc.List(context.Background(), userID, false, 0, 0)
	require.ErrorIs(t, err, ErrLimitReached)
}

func TestListPremiumPlanUnlimited(t *testing.T) {
	userID := uuid.New()
	matches := &fakeMatchRepo{}
	seedMatches(matches, userID, 2)
	subs := newFakeSubscriptionRepo(activeSub(userID, billing.PlanPremium, 100000))

	uc := NewMatchUsecase(matches, subs)
	items, err := uc.List(context.Background(), userID, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestListSkipsHiddenMatches(t *testing.T) {
	userID := uuid.New()
	matches := &fakeMatchRepo{}
	seedMatches(matches, userID, 2)
	matches.items[0].Match.IsHidden = true
	subs := newFakeSubscriptionRepo(activeSub(userID, billing.PlanPremium, 0))

	uc := NewMatchUsecase(matches, subs)
	items, err := uc.List(context.Background(), userID, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = uc.List(context.Background(), userID, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestSetFlagsUnknownMatch(t *testing.T) {
	userID := uuid.New()
	uc := NewMatchUsecase(&fakeMatchRepo{}, newFakeSubscriptionRepo())

	require.ErrorIs(t, uc.SetBookmarked(context.Background(), userID, uuid.New(), true), ErrNotFound)
	require.ErrorIs(t, uc.SetHidden(context.Background(), userID, uuid.New(), true), ErrNotFound)
}
