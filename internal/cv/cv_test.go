package cv

import (
	"context"
	"sync"
	"testing"

	"jobscout/internal/domain/application"
	"jobscout/internal/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
}

func (c *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return c.response, nil
}

type fakeCVRepo struct {
	mu        sync.Mutex
	analyses  map[string]application.Analysis
	generated []application.GeneratedCV
}

func newFakeCVRepo() *fakeCVRepo {
	return &fakeCVRepo{analyses: map[string]application.Analysis{}}
}

func (r *fakeCVRepo) UpsertAnalysis(ctx context.Context, a application.Analysis) (application.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.analyses[a.UserID.String()+"|"+a.JobID.String()] = a
	return a, nil
}

func (r *fakeCVRepo) GetAnalysis(ctx context.Context, userID, jobID uuid.UUID) (application.Analysis, error) {
	return r.analyses[userID.String()+"|"+jobID.String()], nil
}

func (r *fakeCVRepo) InsertGeneratedCV(ctx context.Context, cv application.GeneratedCV) (application.GeneratedCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cv.ID == uuid.Nil {
		cv.ID = uuid.New()
	}
	r.generated = append(r.generated, cv)
	return cv, nil
}

func (r *fakeCVRepo) ListGeneratedByApplication(ctx context.Context, applicationID uuid.UUID) ([]application.GeneratedCV, error) {
	return r.generated, nil
}

func TestAnalyzerStoresStructuredResult(t *testing.T) {
	completer := &fakeCompleter{response: "```json\n" + `{
		"match_score": 72,
		"keyword_analysis": {"matched":["go"],"missing":["kubernetes"]},
		"skills_analysis": {"matched":["sql"],"missing":[]},
		"experience_match": {"assessment":"close","years_gap":1},
		"ats_issues": ["tables detected"],
		"recommendations": ["add kubernetes"]
	}` + "\n```"}

	repo := newFakeCVRepo()
	a := NewAnalyzer(completer, repo)

	userID, jobID := uuid.New(), uuid.New()
	got, err := a.Analyze(context.Background(), userID, jobID, "my cv", "job desc")
	require.NoError(t, err)
	require.Equal(t, 72.0, got.MatchScore)
	require.JSONEq(t, `{"matched":["go"],"missing":["kubernetes"]}`, string(got.KeywordAnalysis))
	require.JSONEq(t, `["tables detected"]`, string(got.ATSIssues))
	require.Len(t, repo.analyses, 1)
}

func TestAnalyzerRejectsBadResponses(t *testing.T) {
	repo := newFakeCVRepo()

	a := NewAnalyzer(&fakeCompleter{response: "not json"}, repo)
	_, err := a.Analyze(context.Background(), uuid.New(), uuid.New(), "cv", "jd")
	require.ErrorIs(t, err, ErrMalformedAnalysis)

	a = NewAnalyzer(&fakeCompleter{response: `{"match_score": 180}`}, repo)
	_, err = a.Analyze(context.Background(), uuid.New(), uuid.New(), "cv", "jd")
	require.ErrorIs(t, err, ErrMalformedAnalysis)

	require.Empty(t, repo.analyses)
}

func TestGeneratorRendersAndStores(t *testing.T) {
	completer := &fakeCompleter{response: `{
		"name": "Jane Doe",
		"email": "jane@example.com",
		"summary": "Backend engineer.",
		"skills": ["Go", "PostgreSQL"],
		"experience": [{"title":"Engineer","company":"Acme","period":"2020-2024","bullets":["built APIs"]}],
		"education": [{"degree":"BSc CS","institution":"UoN","year":"2019"}],
		"certifications": []
	}`}

	repo := newFakeCVRepo()
	g := NewGenerator(completer, repo)

	app := application.Application{ID: uuid.New()}
	got, err := g.Generate(context.Background(), app, "cv", "jd")
	require.NoError(t, err)
	require.Equal(t, app.ID, got.ApplicationID)
	require.Contains(t, got.RenderedHTML, "<h1>Jane Doe</h1>")
	require.Contains(t, got.RenderedHTML, "built APIs")
	require.Len(t, repo.generated, 1)
}

func TestGeneratorRejectsNamelessDocument(t *testing.T) {
	g := NewGenerator(&fakeCompleter{response: `{"summary":"no name"}`}, newFakeCVRepo())

	_, err := g.Generate(context.Background(), application.Application{ID: uuid.New()}, "cv", "jd")
	require.ErrorIs(t, err, ErrMalformedAnalysis)
}
