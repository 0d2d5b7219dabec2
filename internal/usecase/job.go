package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/infrastructure/cache"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

const jobListCacheTTL = 5 * time.Minute

type JobUsecase struct {
	jobs  repository.JobRepository
	cache *cache.Redis
}

func NewJobUsecase(jobs repository.JobRepository, c *cache.Redis) *JobUsecase {
	return &JobUsecase{jobs: jobs, cache: c}
}

func (u *JobUsecase) List(ctx context.Context, limit, offset int) ([]job.Posting, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("jobs:list:%d:%d", limit, offset)
	var cached []job.Posting
	if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	postings, err := u.jobs.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	_ = u.cache.SetJSON(ctx, key, postings, jobListCacheTTL)
	return postings, nil
}

func (u *JobUsecase) Get(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	p, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Posting{}, ErrNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}
