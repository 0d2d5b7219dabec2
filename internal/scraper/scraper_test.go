package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"jobscout/internal/config"
	"jobscout/internal/domain/job"
	"jobscout/internal/domain/user"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

type fakeJobRepo struct {
	mu     sync.Mutex
	byURL  map[string]job.Posting
	latest *time.Time
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{byURL: map[string]job.Posting{}}
}

func (r *fakeJobRepo) Upsert(ctx context.Context, p job.Posting) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byURL[p.URL]; ok {
		return false, nil
	}
	r.byURL[p.URL] = p
	return true, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	return job.Posting{}, nil
}

func (r *fakeJobRepo) List(ctx context.Context, limit, offset int) ([]job.Posting, error) {
	return nil, nil
}

func (r *fakeJobRepo) ListUnmatchedForUser(ctx context.Context, userID uuid.UUID, location string, limit int) ([]job.Posting, error) {
	return nil, nil
}

func (r *fakeJobRepo) LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error) {
	return r.latest, nil
}

func (r *fakeJobRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeJobRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byURL)
}

func TestPoliteFetcherRecoversAfterRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`<html><body><h1>ok</h1></body></html>`))
	}))
	defer server.Close()

	f := NewPoliteFetcher(config.ScraperConfig{UserAgent: "test"}, testLogger())
	f.sleep = noSleep

	doc, err := f.GetDocument(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", doc.Find("h1").Text())
	require.Equal(t, 2, calls)
}

func TestPoliteFetcherGivesUpAfterBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewPoliteFetcher(config.ScraperConfig{UserAgent: "test"}, testLogger())
	f.sleep = noSleep
	f.maxAttempts = 3

	_, err := f.GetDocument(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrFetchExhausted)
}

type fakeUserRepo struct {
	users []user.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) { return u, nil }
func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return user.User{}, nil
}
func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, nil
}
func (r *fakeUserRepo) ListWithPreferences(ctx context.Context) ([]user.User, error) {
	return r.users, nil
}

type fakePrefRepo struct {
	prefs  map[uuid.UUID]user.Preferences
	titles map[uuid.UUID][]string
}

func (r *fakePrefRepo) Get(ctx context.Context, userID uuid.UUID) (user.Preferences, error) {
	return r.prefs[userID], nil
}
func (r *fakePrefRepo) Upsert(ctx context.Context, p user.Preferences) (user.Preferences, error) {
	return p, nil
}
func (r *fakePrefRepo) GetTitles(ctx context.Context, userID uuid.UUID) (user.ExtractedTitles, error) {
	return user.ExtractedTitles{UserID: userID, Titles: r.titles[userID]}, nil
}
func (r *fakePrefRepo) SaveTitles(ctx context.Context, userID uuid.UUID, titles []string) error {
	return nil
}
func (r *fakePrefRepo) DistinctLocations(ctx context.Context) ([]string, error) { return nil, nil }
func (r *fakePrefRepo) DistinctTitles(ctx context.Context) ([]string, error)    { return nil, nil }

type fakeFetcher struct {
	mu       sync.Mutex
	requests []string
	pages    map[string]string
	fallback string
}

func (f *fakeFetcher) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	f.mu.Lock()
	f.requests = append(f.requests, rawURL)
	f.mu.Unlock()

	html, ok := f.pages[rawURL]
	if !ok {
		html = f.fallback
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

const linkedInCardHTML = `<html><body><ul><li>
  <div class="base-card">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/backend-123?refId=abc"></a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">Backend Engineer</h3>
      <h4 class="base-search-card__subtitle">Acme</h4>
      <span class="job-search-card__location">Nairobi, Kenya</span>
    </div>
    <time class="job-search-card__listdate" datetime="2025-08-01"></time>
  </div>
</li></ul></body></html>`

func TestLinkedInScraperStoresParsedCards(t *testing.T) {
	userID := uuid.New()
	users := &fakeUserRepo{users: []user.User{{ID: userID, Email: "a@b.c"}}}
	prefs := &fakePrefRepo{
		prefs:  map[uuid.UUID]user.Preferences{userID: {UserID: userID, Locations: []string{"Nairobi"}}},
		titles: map[uuid.UUID][]string{userID: {"Backend Engineer"}},
	}

	jobs := newFakeJobRepo()
	store := NewStore(jobs, testLogger())

	s := NewLinkedInScraper(nil, store, users, prefs, "https://example.test/search", testLogger())
	fetcher := &fakeFetcher{
		pages: map[string]string{
			s.searchURL("Backend Engineer", "Nairobi", 0, 0): linkedInCardHTML,
		},
		fallback: `<html><body><div class="jobs-search-no-results"></div></body></html>`,
	}
	s.fetcher = fetcher

	n, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, jobs.count())

	p := jobs.byURL["https://www.linkedin.com/jobs/view/backend-123"]
	require.Equal(t, "Backend Engineer", p.Title)
	require.Equal(t, "Acme", p.Company)
	require.Equal(t, "Nairobi, Kenya", p.Location)
	require.Equal(t, job.SourceLinkedIn, p.Source)
	require.Equal(t, 2025, p.DatePosted.Year())
}

func TestLinkedInScraperRemoteOnlySearchesRemote(t *testing.T) {
	userID := uuid.New()
	users := &fakeUserRepo{users: []user.User{{ID: userID}}}
	prefs := &fakePrefRepo{
		prefs:  map[uuid.UUID]user.Preferences{userID: {UserID: userID, RemoteOnly: true, Locations: []string{"Nairobi"}}},
		titles: map[uuid.UUID][]string{userID: {"Data Analyst"}},
	}

	store := NewStore(newFakeJobRepo(), testLogger())
	s := NewLinkedInScraper(nil, store, users, prefs, "https://example.test/search", testLogger())
	fetcher := &fakeFetcher{fallback: `<html><body></body></html>`}
	s.fetcher = fetcher

	_, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, fetcher.requests)
	for _, u := range fetcher.requests {
		require.Contains(t, u, "location=Remote")
	}
}

func TestMyJobMagScraperParsesDetailPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/page/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><ul class="job-list">
			<li class="job-list-li"><a href="/job/engineer-acme">Engineer at Acme</a></li>
		</ul></body></html>`))
	})
	mux.HandleFunc("/job/engineer-acme", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h2 class="mag-b read-head">Engineer at Acme</h2>
			<ul class="job-key-info"><li>Full Time</li><li>Engineering</li><li>BSc</li><li>Nairobi</li></ul>
			<span id="posted-date">Aug 1, 2025</span>
			<div class="job-details">Build things.</div>
		</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	jobs := newFakeJobRepo()
	s := NewMyJobMagScraper(NewStore(jobs, testLogger()), "test-agent", testLogger())
	s.baseURL = server.URL
	s.host = hostFromBaseURL(server.URL, "")
	s.limitRule = &colly.LimitRule{DomainGlob: "*", Parallelism: 1}
	s.sleep = noSleep

	n, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	p := jobs.byURL[server.URL+"/job/engineer-acme"]
	require.Equal(t, "Engineer", p.Title)
	require.Equal(t, "Acme", p.Company)
	require.Equal(t, "Nairobi", p.Location)
	require.Equal(t, "Build things.", p.Description)
	require.Equal(t, job.SourceMyJobMag, p.Source)
	require.Equal(t, time.August, p.DatePosted.Month())
}

func TestCorporateStaffingScraperParsesLabeledFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="entry-content-wrap">
			<a class="post-more-link" href="/accountant-job/">Read more</a>
		</div></body></html>`))
	})
	mux.HandleFunc("/accountant-job/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<div class="kt-inside-inner-col"><p><strong>Job Title:</strong> Accountant</p></div>
			<div class="kt-inside-inner-col"><p><strong>Hiring Organization:</strong> Beta Ltd</p></div>
			<div class="kt-inside-inner-col"><p><strong>Location:</strong> Mombasa</p></div>
			<div class="kt-inside-inner-col"><p><strong>Date Posted:</strong> 08/01/2025</p></div>
			<div class="entry-content">Handle the books.</div>
		</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	jobs := newFakeJobRepo()
	s := NewCorporateStaffingScraper(NewStore(jobs, testLogger()), "test-agent", testLogger())
	s.baseURL = server.URL
	s.host = hostFromBaseURL(server.URL, "")
	s.limitRule = &colly.LimitRule{DomainGlob: "*", Parallelism: 1}
	s.sleep = noSleep

	n, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	p := jobs.byURL[server.URL+"/accountant-job/"]
	require.Equal(t, "Accountant", p.Title)
	require.Equal(t, "Beta Ltd", p.Company)
	require.Equal(t, "Mombasa", p.Location)
	require.Equal(t, job.SourceCorporateStaffing, p.Source)
	require.Equal(t, 1, p.DatePosted.Day())
}

func TestReliefWebScraperMapsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "jobscout-test", r.URL.Query().Get("appname"))
		require.Equal(t, "500", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"1","fields":{
				"title":"Programme Officer",
				"url":"https://reliefweb.int/job/1",
				"body":"desc",
				"date":{"created":"2025-08-01T00:00:00+00:00"},
				"source":[{"name":"UN"}],
				"country":[{"name":"Kenya"},{"name":"Uganda"}]
			}},
			{"id":"2","fields":{"title":"","url":""}}
		]}`))
	}))
	defer server.Close()

	jobs := newFakeJobRepo()
	s := NewReliefWebScraper(NewStore(jobs, testLogger()), "jobscout-test", testLogger())
	s.apiBase = server.URL

	n, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	p := jobs.byURL["https://reliefweb.int/job/1"]
	require.Equal(t, "Programme Officer", p.Title)
	require.Equal(t, "UN", p.Company)
	require.Equal(t, "Kenya, Uganda", p.Location)
	require.Equal(t, job.SourceReliefWeb, p.Source)

	// Second run is a no-op thanks to URL-keyed conflict-ignore upserts.
	n, err = s.Scrape(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, 1, jobs.count())
}

func TestSplitTitleCompany(t *testing.T) {
	title, company := splitTitleCompany("Senior Engineer at Acme Corp")
	require.Equal(t, "Senior Engineer", title)
	require.Equal(t, "Acme Corp", company)

	title, company = splitTitleCompany("Standalone Role")
	require.Equal(t, "Standalone Role", title)
	require.Equal(t, "", company)
}
