package usecase

import (
	"context"
	"errors"
	"time"

	"jobscout/internal/domain/application"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

type ApplicationUsecase struct {
	apps repository.ApplicationRepository
	jobs repository.JobRepository

	now func() time.Time
}

func NewApplicationUsecase(apps repository.ApplicationRepository, jobs repository.JobRepository) *ApplicationUsecase {
	return &ApplicationUsecase{apps: apps, jobs: jobs, now: time.Now}
}

func (u *ApplicationUsecase) List(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	return u.apps.ListByUser(ctx, userID)
}

// UpdateStatus moves the application for (user, job) through the status
// state machine, creating the row lazily on the first touch. Moving into
// APPLIED stamps the applied-at time.
func (u *ApplicationUsecase) UpdateStatus(ctx context.Context, userID, jobID uuid.UUID, next application.Status) (application.Application, error) {
	if !next.Valid() {
		return application.Application{}, ErrInvalidInput
	}

	if _, err := u.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}

	app, err := u.apps.GetOrCreate(ctx, userID, jobID)
	if err != nil {
		return application.Application{}, err
	}

	if !app.Status.CanTransition(next) {
		return application.Application{}, ErrInvalidTransition
	}

	var appliedAt *time.Time
	if next == application.StatusApplied {
		t := u.now().UTC()
		appliedAt = &t
	}
	if err := u.apps.UpdateStatus(ctx, app.ID, next, appliedAt); err != nil {
		return application.Application{}, err
	}

	return u.apps.GetByID(ctx, app.ID)
}
