package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/user"
	"jobscout/internal/repository"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const linkedInMaxPages = 25

// LinkedInScraper searches the public guest jobs API per (location, keyword)
// pair derived from user preferences and extracted titles.
type LinkedInScraper struct {
	fetcher Fetcher
	store   *Store
	users   user.Repository
	prefs   repository.PreferenceRepository
	baseURL string
	log     *logrus.Logger
	now     func() time.Time
}

func NewLinkedInScraper(fetcher Fetcher, store *Store, users user.Repository, prefs repository.PreferenceRepository, baseURL string, log *logrus.Logger) *LinkedInScraper {
	return &LinkedInScraper{
		fetcher: fetcher,
		store:   store,
		users:   users,
		prefs:   prefs,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

func (s *LinkedInScraper) Name() string { return "linkedin" }

func (s *LinkedInScraper) Scrape(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("nil scraper/store")
	}

	users, err := s.users.ListWithPreferences(ctx)
	if err != nil {
		return 0, err
	}

	sinceSeconds := s.secondsSinceLastScrape(ctx)

	var total int
	seen := map[string]struct{}{}
	for _, u := range users {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		titles, err := s.prefs.GetTitles(ctx, u.ID)
		if err != nil || len(titles.Titles) == 0 {
			continue
		}
		prefs, err := s.prefs.Get(ctx, u.ID)
		if err != nil {
			continue
		}

		for _, location := range searchLocations(prefs) {
			for _, keyword := range titles.Titles {
				combo := strings.ToLower(location + "|" + keyword)
				if _, ok := seen[combo]; ok {
					continue
				}
				seen[combo] = struct{}{}

				n, err := s.scrapeCombo(ctx, keyword, location, sinceSeconds)
				total += n
				if err != nil {
					if ctx.Err() != nil {
						return total, ctx.Err()
					}
					s.log.WithFields(logrus.Fields{
						"keyword":  keyword,
						"location": location,
					}).WithError(err).Warn("linkedin combo failed")
				}
			}
		}
	}
	return total, nil
}

// searchLocations maps preferences to the locations searched: remote-only
// users and users without preferred locations both search "Remote".
func searchLocations(p user.Preferences) []string {
	if p.RemoteOnly || len(p.Locations) == 0 {
		return []string{"Remote"}
	}
	return p.Locations
}

func (s *LinkedInScraper) scrapeCombo(ctx context.Context, keyword, location string, sinceSeconds int64) (int, error) {
	var created int
	for page := 0; page < linkedInMaxPages; page++ {
		doc, err := s.fetcher.GetDocument(ctx, s.searchURL(keyword, location, sinceSeconds, page*25))
		if err != nil {
			return created, err
		}

		if doc.Find(".jobs-search-no-results").Length() > 0 {
			break
		}
		cards := doc.Find(".base-search-card__info")
		if cards.Length() == 0 {
			break
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			p, ok := s.parseCard(card, location)
			if !ok {
				return
			}
			if s.store.Save(ctx, p) {
				created++
			}
		})
	}
	return created, nil
}

func (s *LinkedInScraper) searchURL(keyword, location string, sinceSeconds int64, start int) string {
	q := url.Values{}
	q.Set("keywords", keyword)
	q.Set("location", location)
	q.Set("start", fmt.Sprintf("%d", start))
	if sinceSeconds > 0 {
		q.Set("f_TPR", fmt.Sprintf("r%d", sinceSeconds))
	}
	return s.baseURL + "?" + q.Encode()
}

func (s *LinkedInScraper) parseCard(card *goquery.Selection, fallbackLocation string) (job.Posting, bool) {
	container := card.Closest("li, div.base-card")
	link, _ := container.Find("a.base-card__full-link").Attr("href")
	if link == "" {
		link, _ = card.Find("a").Attr("href")
	}
	link = strings.TrimSpace(link)
	if idx := strings.Index(link, "?"); idx > 0 {
		link = link[:idx]
	}

	title := strings.TrimSpace(card.Find(".base-search-card__title").Text())
	company := strings.TrimSpace(card.Find(".base-search-card__subtitle").Text())
	location := strings.TrimSpace(card.Find(".job-search-card__location").Text())
	if title == "" || link == "" {
		return job.Posting{}, false
	}

	posted := s.now().UTC()
	if raw, ok := container.Find("time").Attr("datetime"); ok {
		posted = parseDateOr("2006-01-02", raw, posted)
	}

	return job.Posting{
		URL:        link,
		Title:      title,
		Company:    company,
		Location:   pickNonEmpty(location, fallbackLocation),
		Source:     job.SourceLinkedIn,
		DatePosted: posted,
	}, true
}

// secondsSinceLastScrape feeds the time-posted filter so repeat runs only
// pull postings newer than the last stored one. Zero disables the filter.
func (s *LinkedInScraper) secondsSinceLastScrape(ctx context.Context) int64 {
	last, err := s.store.LatestScrapeTime(ctx, job.SourceLinkedIn)
	if err != nil || last == nil {
		return 0
	}
	secs := int64(s.now().UTC().Sub(*last).Seconds())
	if secs <= 0 {
		return 0
	}
	return secs
}
