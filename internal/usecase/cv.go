package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobscout/internal/cv"
	"jobscout/internal/domain/application"
	"jobscout/internal/payments"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

type CVUsecase struct {
	analyzer  *cv.Analyzer
	generator *cv.Generator
	apps      repository.ApplicationRepository
	jobs      repository.JobRepository
	cvs       repository.CVRepository
	subs      repository.SubscriptionRepository

	now func() time.Time
}

func NewCVUsecase(analyzer *cv.Analyzer, generator *cv.Generator, apps repository.ApplicationRepository, jobs repository.JobRepository, cvs repository.CVRepository, subs repository.SubscriptionRepository) *CVUsecase {
	return &CVUsecase{
		analyzer:  analyzer,
		generator: generator,
		apps:      apps,
		jobs:      jobs,
		cvs:       cvs,
		subs:      subs,
		now:       time.Now,
	}
}

// Analyze scores the user's CV text against one posting and stores the
// structured result, replacing any previous analysis for the pair.
func (u *CVUsecase) Analyze(ctx context.Context, userID, jobID uuid.UUID, cvText string) (application.Analysis, error) {
	if strings.TrimSpace(cvText) == "" {
		return application.Analysis{}, ErrInvalidInput
	}

	posting, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return application.Analysis{}, ErrNotFound
		}
		return application.Analysis{}, err
	}

	// Touch the application so the analysis is always attached to one.
	if _, err := u.apps.GetOrCreate(ctx, userID, jobID); err != nil {
		return application.Analysis{}, err
	}

	return u.analyzer.Analyze(ctx, userID, jobID, cvText, posting.Description)
}

func (u *CVUsecase) GetAnalysis(ctx context.Context, userID, jobID uuid.UUID) (application.Analysis, error) {
	a, err := u.cvs.GetAnalysis(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return application.Analysis{}, ErrNotFound
		}
		return application.Analysis{}, err
	}
	return a, nil
}

// Generate produces a tailored CV for one posting. Generation counts
// against the plan's CV allowance.
func (u *CVUsecase) Generate(ctx context.Context, userID, jobID uuid.UUID, cvText string) (application.GeneratedCV, error) {
	if strings.TrimSpace(cvText) == "" {
		return application.GeneratedCV{}, ErrInvalidInput
	}

	sub, err := u.subs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return application.GeneratedCV{}, ErrNoActiveSubscription
		}
		return application.GeneratedCV{}, err
	}
	if !sub.IsValid(u.now()) {
		return application.GeneratedCV{}, ErrNoActiveSubscription
	}
	limits := payments.LimitsFor(sub.Plan)
	if !payments.WithinLimit(limits.CVGenerations, sub.CVGenerationsUsed) {
		return application.GeneratedCV{}, ErrLimitReached
	}

	posting, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return application.GeneratedCV{}, ErrNotFound
		}
		return application.GeneratedCV{}, err
	}

	app, err := u.apps.GetOrCreate(ctx, userID, jobID)
	if err != nil {
		return application.GeneratedCV{}, err
	}

	generated, err := u.generator.Generate(ctx, app, cvText, posting.Description)
	if err != nil {
		return application.GeneratedCV{}, err
	}

	if err := u.subs.IncrementCVGenerationsUsed(ctx, userID); err != nil {
		return application.GeneratedCV{}, err
	}
	return generated, nil
}

func (u *CVUsecase) ListGenerated(ctx context.Context, userID, jobID uuid.UUID) ([]application.GeneratedCV, error) {
	app, err := u.apps.GetOrCreate(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return u.cvs.ListGeneratedByApplication(ctx, app.ID)
}
