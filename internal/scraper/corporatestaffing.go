package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout/internal/domain/job"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const corporateStaffingPages = 5

// CorporateStaffingScraper walks the WordPress job archive and reads the
// labeled field blocks on each posting page.
type CorporateStaffingScraper struct {
	store     *Store
	baseURL   string
	host      string
	userAgent string
	pageDelay time.Duration
	limitRule *colly.LimitRule
	log       *logrus.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewCorporateStaffingScraper(store *Store, userAgent string, log *logrus.Logger) *CorporateStaffingScraper {
	s := &CorporateStaffingScraper{
		store:     store,
		baseURL:   "https://www.corporatestaffing.co.ke",
		userAgent: userAgent,
		pageDelay: 30 * time.Second,
		limitRule: &colly.LimitRule{DomainGlob: "*corporatestaffing*", Parallelism: 1, Delay: 1 * time.Second, RandomDelay: 2 * time.Second},
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	s.host = hostFromBaseURL(s.baseURL, "www.corporatestaffing.co.ke")
	return s
}

func (s *CorporateStaffingScraper) Name() string { return "corporatestaffing" }

func (s *CorporateStaffingScraper) Scrape(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("nil scraper/store")
	}

	var created int
	for page := 1; page <= corporateStaffingPages; page++ {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}

		listURL := fmt.Sprintf("%s/jobs/page/%d/", s.baseURL, page)
		if page == 1 {
			listURL = s.baseURL + "/jobs/"
		}
		links, err := s.scrapeListingPage(ctx, listURL)
		if err != nil {
			s.log.WithField("page", page).WithError(err).Warn("corporatestaffing listing failed")
			continue
		}
		for _, link := range links {
			p, err := s.scrapeDetailPage(ctx, link)
			if err != nil {
				s.log.WithField("url", link).WithError(err).Debug("corporatestaffing detail skipped")
				continue
			}
			if s.store.Save(ctx, p) {
				created++
			}
		}

		if page < corporateStaffingPages {
			if err := s.sleep(ctx, s.pageDelay); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func (s *CorporateStaffingScraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(s.host),
		colly.UserAgent(s.userAgent),
	)
	_ = c.Limit(s.limitRule)
	return c
}

func (s *CorporateStaffingScraper) scrapeListingPage(ctx context.Context, listURL string) ([]string, error) {
	c := s.newCollector()

	links := make([]string, 0)
	c.OnHTML("div.entry-content-wrap a.post-more-link", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		if abs := e.Request.AbsoluteURL(href); abs != "" {
			links = append(links, abs)
		}
	})

	var reqErr error
	c.OnError(func(_ *colly.Response, err error) { reqErr = err })

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(listURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}

	return dedupe(links), nil
}

func (s *CorporateStaffingScraper) scrapeDetailPage(ctx context.Context, jobURL string) (job.Posting, error) {
	c := s.newCollector()

	fields := map[string]string{}
	var description string
	var reqErr error

	// Posting fields are <strong>Label:</strong> followed by the value in
	// the same column block.
	c.OnHTML("div.kt-inside-inner-col", func(e *colly.HTMLElement) {
		e.DOM.Find("strong").Each(func(_ int, sel *goquery.Selection) {
			label := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(sel.Text()), ":"))
			value := strings.TrimSpace(sel.Parent().Text())
			value = strings.TrimSpace(strings.TrimPrefix(value, sel.Text()))
			if label != "" && value != "" {
				fields[label] = value
			}
		})
	})

	c.OnHTML("div.entry-content", func(e *colly.HTMLElement) {
		description = strings.TrimSpace(e.Text)
	})

	c.OnError(func(_ *colly.Response, err error) { reqErr = err })

	if ctx.Err() != nil {
		return job.Posting{}, ctx.Err()
	}
	if err := c.Visit(jobURL); err != nil {
		return job.Posting{}, err
	}
	c.Wait()
	if reqErr != nil {
		return job.Posting{}, reqErr
	}

	title := fields["job title"]
	if title == "" {
		return job.Posting{}, fmt.Errorf("no job title at %s", jobURL)
	}

	return job.Posting{
		URL:         jobURL,
		Title:       title,
		Company:     fields["hiring organization"],
		Location:    fields["location"],
		Description: description,
		Source:      job.SourceCorporateStaffing,
		DatePosted:  parseDateOr("01/02/2006", fields["date posted"], s.now().UTC()),
	}, nil
}
