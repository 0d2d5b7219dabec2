package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"jobscout/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ErrFetchExhausted marks a URL abandoned after the retry budget.
var ErrFetchExhausted = errors.New("fetch attempts exhausted")

// Fetcher returns parsed markup for a URL or an error after the retry
// budget runs out.
type Fetcher interface {
	GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// PoliteFetcher fetches pages through the configured proxy with fixed-range
// randomized delays. No exponential backoff: the target sites throttle on
// request rate, not on failure streaks.
type PoliteFetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	log         *logrus.Logger

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoliteFetcher(cfg config.ScraperConfig, log *logrus.Logger) *PoliteFetcher {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			if cfg.ProxyAuth != "" {
				proxyURL.User = url.User(cfg.ProxyAuth)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &PoliteFetcher{
		client:      &http.Client{Timeout: 60 * time.Second, Transport: transport},
		userAgent:   cfg.UserAgent,
		maxAttempts: 10,
		log:         log,
		sleep:       sleepCtx,
	}
}

func (f *PoliteFetcher) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		doc, status, err := f.fetchOnce(ctx, rawURL)
		switch {
		case err == nil && status == http.StatusOK:
			// Stay under anti-scraping rate thresholds even on success.
			if err := f.sleep(ctx, jitter(3*time.Second, 15*time.Second)); err != nil {
				return nil, err
			}
			return doc, nil

		case status == http.StatusTooManyRequests:
			// Rate limited: wait it out without burning the attempt budget.
			f.log.WithField("url", rawURL).Warn("rate limited, backing off")
			if err := f.sleep(ctx, jitter(3*time.Second, 5*time.Second)); err != nil {
				return nil, err
			}
			attempt--

		default:
			f.log.WithFields(logrus.Fields{
				"url":     rawURL,
				"status":  status,
				"attempt": attempt,
			}).WithError(err).Warn("fetch failed")
			if err := f.sleep(ctx, jitter(5*time.Second, 15*time.Second)); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFetchExhausted, rawURL)
}

func (f *PoliteFetcher) fetchOnce(ctx context.Context, rawURL string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return doc, resp.StatusCode, nil
}

func jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
