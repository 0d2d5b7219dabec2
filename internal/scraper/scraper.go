package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/repository"

	"github.com/sirupsen/logrus"
)

// Source is one scrape target. Scrape returns how many new postings it
// stored.
type Source interface {
	Name() string
	Scrape(ctx context.Context) (int, error)
}

// Store is the persistence surface shared by all sources.
type Store struct {
	jobs repository.JobRepository
	log  *logrus.Logger
}

func NewStore(jobs repository.JobRepository, log *logrus.Logger) *Store {
	return &Store{jobs: jobs, log: log}
}

// Save upserts a posting and reports whether it was new. Invalid postings
// are skipped with a log line, never an error: one bad card must not stop a
// page.
func (s *Store) Save(ctx context.Context, p job.Posting) bool {
	if s == nil || s.jobs == nil {
		return false
	}
	if strings.TrimSpace(p.URL) == "" || strings.TrimSpace(p.Title) == "" {
		s.log.WithFields(logrus.Fields{
			"source": p.Source,
			"url":    p.URL,
		}).Debug("skipping incomplete posting")
		return false
	}
	created, err := s.jobs.Upsert(ctx, p)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"source": p.Source,
			"url":    p.URL,
		}).WithError(err).Warn("job upsert failed")
		return false
	}
	return created
}

// LatestScrapeTime exposes the newest scraped_at per source for the
// incremental time filters.
func (s *Store) LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error) {
	return s.jobs.LatestScrapeTime(ctx, source)
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

// parseDateOr parses raw with the given layout, falling back to today when
// the source emits something unexpected.
func parseDateOr(layout, raw string, fallback time.Time) time.Time {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return t
}

// splitTitleCompany splits a "Title at Company" heading on the last " at ".
func splitTitleCompany(heading string) (string, string) {
	heading = strings.TrimSpace(heading)
	idx := strings.LastIndex(heading, " at ")
	if idx < 0 {
		return heading, ""
	}
	return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+4:])
}

// RunAll executes every source sequentially and returns the first error
// alongside the aggregate count of new postings.
func RunAll(ctx context.Context, log *logrus.Logger, sources ...Source) (int, error) {
	var total int
	var firstErr error
	for _, src := range sources {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := src.Scrape(ctx)
		total += n
		if err != nil {
			log.WithField("source", src.Name()).WithError(err).Error("scrape failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", src.Name(), err)
			}
			continue
		}
		log.WithFields(logrus.Fields{"source": src.Name(), "new_jobs": n}).Info("scrape finished")
	}
	return total, firstErr
}
