package usecase

import (
	"context"
	"testing"

	"jobscout/internal/domain/application"
	"jobscout/internal/domain/job"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newApplicationFixture(t *testing.T) (*ApplicationUsecase, uuid.UUID, uuid.UUID) {
	t.Helper()
	posting := job.Posting{ID: uuid.New(), URL: "https://example.com/job", Title: "Backend Engineer"}
	uc := NewApplicationUsecase(newFakeApplicationRepo(), newFakeJobRepo(posting))
	return uc, uuid.New(), posting.ID
}

func TestUpdateStatusCreatesLazilyAndStampsAppliedAt(t *testing.T) {
	uc, userID, jobID := newApplicationFixture(t)

	app, err := uc.UpdateStatus(context.Background(), userID, jobID, application.StatusApplied)
	require.NoError(t, err)
	require.Equal(t, application.StatusApplied, app.Status)
	require.NotNil(t, app.AppliedAt)

	items, err := uc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	uc, userID, jobID := newApplicationFixture(t)

	// NOT_APPLIED can only move to APPLIED.
	_, err := uc.UpdateStatus(context.Background(), userID, jobID, application.StatusInterview)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = uc.UpdateStatus(context.Background(), userID, jobID, application.StatusApplied)
	require.NoError(t, err)

	app, err := uc.UpdateStatus(context.Background(), userID, jobID, application.StatusInterview)
	require.NoError(t, err)
	require.Equal(t, application.StatusInterview, app.Status)

	// Terminal states accept no further transitions.
	app, err = uc.UpdateStatus(context.Background(), userID, jobID, application.StatusAccepted)
	require.NoError(t, err)
	_, err = uc.UpdateStatus(context.Background(), userID, jobID, application.StatusApplied)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, application.StatusAccepted, app.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	uc, userID, jobID := newApplicationFixture(t)

	_, err := uc.UpdateStatus(context.Background(), userID, jobID, application.Status("GHOSTED"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatusUnknownJob(t *testing.T) {
	uc, userID, _ := newApplicationFixture(t)

	_, err := uc.UpdateStatus(context.Background(), userID, uuid.New(), application.StatusApplied)
	require.ErrorIs(t, err, ErrNotFound)
}
