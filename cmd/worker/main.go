package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobscout/internal/app"
	"jobscout/internal/config"
	"jobscout/internal/database/migration"
	"jobscout/internal/infrastructure/cache"
	"jobscout/internal/logger"
	"jobscout/internal/scheduler"
	"jobscout/internal/scraper"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New()

	c, err := app.NewContainer(cfg, lg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	runner := migration.Runner{Dir: "migrations"}
	if err := runner.Run(migCtx, c.DB.SQLDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	go c.Hub.Run()

	store := scraper.NewStore(c.Jobs, lg)
	fetcher := scraper.NewPoliteFetcher(cfg.Scraper, lg)
	linkedIn := scraper.NewLinkedInScraper(fetcher, store, c.Users, c.Preferences, cfg.Scraper.LinkedInBaseURL, lg)
	myJobMag := scraper.NewMyJobMagScraper(store, cfg.Scraper.UserAgent, lg)
	corporate := scraper.NewCorporateStaffingScraper(store, cfg.Scraper.UserAgent, lg)
	reliefWeb := scraper.NewReliefWebScraper(store, cfg.Scraper.ReliefWebApp, lg)

	sched := scheduler.New(cache.NewTaskLocker(c.Cache), lg)

	register := func(spec scheduler.TaskSpec) {
		if err := sched.Register(spec); err != nil {
			log.Fatalf("register task %s: %v", spec.Name, err)
		}
	}

	for _, spec := range scrapeSchedule(lg, linkedIn, myJobMag, corporate, reliefWeb) {
		register(spec)
	}
	register(scheduler.TaskSpec{
		Name:       "match-users",
		Interval:   4 * time.Hour,
		Timeout:    time.Hour,
		MaxRetries: scrapeRetries,
		RetryDelay: time.Minute,
		Run: func(ctx context.Context) error {
			_, err := c.Matcher.Run(ctx)
			return err
		},
	})
	register(scheduler.TaskSpec{
		Name:     "application-reminders",
		Interval: 24 * time.Hour,
		Timeout:  15 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := c.Notifier.RemindStaleApplications(ctx)
			return err
		},
	})
	register(scheduler.TaskSpec{
		Name:     "subscription-warnings",
		Interval: 24 * time.Hour,
		Timeout:  15 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := c.Notifier.WarnExpiringSubscriptions(ctx)
			return err
		},
	})
	register(scheduler.TaskSpec{
		Name:     "retention-cleanup",
		Interval: 24 * time.Hour,
		Timeout:  15 * time.Minute,
		Run:      c.Cleaner.Run,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("worker started")
	sched.Start(ctx)
	lg.Info("worker stopped")
}

const scrapeRetries = 3

// scrapeSchedule declares one task per source. Each source carries its own
// hourly rate limit so a retry storm on one board never throttles the rest.
func scrapeSchedule(lg *logrus.Logger, linkedIn, myJobMag, corporate, reliefWeb scraper.Source) []scheduler.TaskSpec {
	scrape := func(s scraper.Source) scheduler.Task {
		return func(ctx context.Context) error {
			_, err := scraper.RunAll(ctx, lg, s)
			return err
		}
	}

	return []scheduler.TaskSpec{
		{
			Name:       "scrape-linkedin",
			Interval:   12 * time.Hour,
			Timeout:    2 * time.Hour,
			MaxRetries: scrapeRetries,
			RetryDelay: time.Minute,
			RateLimit:  rate.Every(30 * time.Minute), // 2/h
			Run:        scrape(linkedIn),
		},
		{
			Name:       "scrape-reliefweb",
			Interval:   12 * time.Hour,
			Timeout:    30 * time.Minute,
			MaxRetries: scrapeRetries,
			RetryDelay: time.Minute,
			RateLimit:  rate.Every(time.Hour), // 1/h
			Run:        scrape(reliefWeb),
		},
		{
			Name:       "scrape-myjobmag",
			Interval:   24 * time.Hour,
			Timeout:    2 * time.Hour,
			MaxRetries: scrapeRetries,
			RetryDelay: time.Minute,
			RateLimit:  rate.Every(10 * time.Minute), // 6/h
			Run:        scrape(myJobMag),
		},
		{
			Name:       "scrape-corporatestaffing",
			Interval:   24 * time.Hour,
			Timeout:    2 * time.Hour,
			MaxRetries: scrapeRetries,
			RetryDelay: time.Minute,
			RateLimit:  rate.Every(15 * time.Minute), // 4/h
			Run:        scrape(corporate),
		},
	}
}
