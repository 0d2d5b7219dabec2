package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"jobscout/internal/app"
	"jobscout/internal/config"
	"jobscout/internal/database/migration"
	"jobscout/internal/logger"
	"jobscout/internal/scraper"
)

// One-shot scrape across the configured boards, for backfills and local
// testing. The worker runs the same sources on a schedule.
func main() {
	sourceFlag := flag.String("source", "all", "linkedin, myjobmag, corporatestaffing, reliefweb or all")
	flag.Parse()

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

	store := scraper.NewStore(c.Jobs, lg)
	fetcher := scraper.NewPoliteFetcher(cfg.Scraper, lg)

	all := []scraper.Source{
		scraper.NewLinkedInScraper(fetcher, store, c.Users, c.Preferences, cfg.Scraper.LinkedInBaseURL, lg),
		scraper.NewMyJobMagScraper(store, cfg.Scraper.UserAgent, lg),
		scraper.NewCorporateStaffingScraper(store, cfg.Scraper.UserAgent, lg),
		scraper.NewReliefWebScraper(store, cfg.Scraper.ReliefWebApp, lg),
	}

	want := strings.ToLower(strings.TrimSpace(*sourceFlag))
	var selected []scraper.Source
	for _, s := range all {
		if want == "all" || strings.EqualFold(s.Name(), want) {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		log.Fatalf("unknown source %q", want)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
	defer cancel()

	created, err := scraper.RunAll(ctx, lg, selected...)
	if err != nil {
		lg.WithError(err).Error("scrape finished with errors")
	}
	lg.WithField("new_jobs", created).Info("scrape complete")
}
