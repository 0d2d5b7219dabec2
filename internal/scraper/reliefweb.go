package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobscout/internal/domain/job"

	"github.com/sirupsen/logrus"
)

// ReliefWebScraper pulls the latest humanitarian job listings from the
// typed JSON API. No HTML parsing involved.
type ReliefWebScraper struct {
	store   *Store
	client  *http.Client
	apiBase string
	appName string
	limit   int
	log     *logrus.Logger
	now     func() time.Time
}

func NewReliefWebScraper(store *Store, appName string, log *logrus.Logger) *ReliefWebScraper {
	return &ReliefWebScraper{
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: "https://api.reliefweb.int/v1/jobs",
		appName: appName,
		limit:   500,
		log:     log,
		now:     time.Now,
	}
}

func (s *ReliefWebScraper) Name() string { return "reliefweb" }

type reliefWebResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Fields struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Body  string `json:"body"`
			Date  struct {
				Created string `json:"created"`
			} `json:"date"`
			Source []struct {
				Name string `json:"name"`
			} `json:"source"`
			Country []struct {
				Name string `json:"name"`
			} `json:"country"`
		} `json:"fields"`
	} `json:"data"`
}

func (s *ReliefWebScraper) Scrape(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("nil scraper/store")
	}

	body, err := httpGetWithRetry(ctx, s.client, s.listURL(), 3)
	if err != nil {
		return 0, err
	}

	var parsed reliefWebResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode reliefweb response: %w", err)
	}

	var created int
	for _, item := range parsed.Data {
		f := item.Fields
		if strings.TrimSpace(f.URL) == "" || strings.TrimSpace(f.Title) == "" {
			s.log.WithField("id", item.ID).Debug("reliefweb item skipped")
			continue
		}

		var company string
		if len(f.Source) > 0 {
			company = f.Source[0].Name
		}
		countries := make([]string, 0, len(f.Country))
		for _, c := range f.Country {
			if c.Name != "" {
				countries = append(countries, c.Name)
			}
		}

		posted := s.now().UTC()
		if t, err := time.Parse(time.RFC3339, f.Date.Created); err == nil {
			posted = t.UTC()
		}

		p := job.Posting{
			URL:         f.URL,
			Title:       f.Title,
			Company:     company,
			Location:    strings.Join(countries, ", "),
			Description: f.Body,
			Source:      job.SourceReliefWeb,
			DatePosted:  posted,
		}
		if s.store.Save(ctx, p) {
			created++
		}
	}
	return created, nil
}

func (s *ReliefWebScraper) listURL() string {
	q := url.Values{}
	q.Set("appname", s.appName)
	q.Set("profile", "list")
	q.Set("preset", "latest")
	q.Set("limit", fmt.Sprintf("%d", s.limit))
	return s.apiBase + "?" + q.Encode()
}

func httpGetWithRetry(ctx context.Context, client *http.Client, rawURL string, attempts int) ([]byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		body, err := func() ([]byte, error) {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("status %d", resp.StatusCode)
			}
			return readAllLimit(resp.Body, 20<<20)
		}()
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}
