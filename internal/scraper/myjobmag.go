package scraper

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"jobscout/internal/domain/job"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const myJobMagPages = 5

// MyJobMagScraper walks the paginated listing and follows each posting to
// its detail page.
type MyJobMagScraper struct {
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

func NewMyJobMagScraper(store *Store, userAgent string, log *logrus.Logger) *MyJobMagScraper {
	s := &MyJobMagScraper{
		store:     store,
		baseURL:   "https://www.myjobmag.co.ke",
		userAgent: userAgent,
		pageDelay: 30 * time.Second,
		limitRule: &colly.LimitRule{DomainGlob: "*myjobmag*", Parallelism: 1, Delay: 1 * time.Second, RandomDelay: 2 * time.Second},
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	s.host = hostFromBaseURL(s.baseURL, "www.myjobmag.co.ke")
	return s
}

func (s *MyJobMagScraper) Name() string { return "myjobmag" }

func (s *MyJobMagScraper) Scrape(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("nil scraper/store")
	}

	var created int
	for page := 1; page <= myJobMagPages; page++ {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}

		links, err := s.scrapeListingPage(ctx, fmt.Sprintf("%s/jobs/page/%d", s.baseURL, page))
		if err != nil {
			s.log.WithField("page", page).WithError(err).Warn("myjobmag listing failed")
			continue
		}
		for _, link := range links {
			p, err := s.scrapeDetailPage(ctx, link)
			if err != nil {
				s.log.WithField("url", link).WithError(err).Debug("myjobmag detail skipped")
				continue
			}
			if s.store.Save(ctx, p) {
				created++
			}
		}

		if page < myJobMagPages {
			if err := s.sleep(ctx, s.pageDelay); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func (s *MyJobMagScraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(s.host),
		colly.UserAgent(s.userAgent),
	)
	_ = c.Limit(s.limitRule)
	return c
}

func (s *MyJobMagScraper) scrapeListingPage(ctx context.Context, listURL string) ([]string, error) {
	c := s.newCollector()

	links := make([]string, 0)
	// Listing items live in ul.job-list; grouped postings repeat the same
	// structure inside sub-job-sec sub-lists.
	c.OnHTML("ul.job-list a[href], ul.sub-job-sec a[href]", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" || !strings.Contains(href, "/job/") {
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

func (s *MyJobMagScraper) scrapeDetailPage(ctx context.Context, jobURL string) (job.Posting, error) {
	c := s.newCollector()

	var p job.Posting
	var reqErr error

	c.OnHTML("body", func(e *colly.HTMLElement) {
		heading := strings.TrimSpace(e.DOM.Find("h2.mag-b.read-head").First().Text())
		if heading == "" {
			heading = strings.TrimSpace(e.DOM.Find("h1").First().Text())
		}
		p.Title, p.Company = splitTitleCompany(heading)

		// The fourth key-info item is the location on every posting layout.
		p.Location = strings.TrimSpace(e.DOM.Find("ul.job-key-info li").Eq(3).Text())
		p.Description = strings.TrimSpace(e.DOM.Find("div.job-details").Text())
		p.DatePosted = parseDateOr("Jan 2, 2006",
			strings.TrimSpace(e.DOM.Find("#posted-date").Text()), s.now().UTC())
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
	if p.Title == "" {
		return job.Posting{}, fmt.Errorf("no title at %s", jobURL)
	}

	p.URL = jobURL
	p.Source = job.SourceMyJobMag
	return p, nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func hostFromBaseURL(base, fallback string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" {
		return fallback
	}
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		return h
	}
	return u.Host
}
