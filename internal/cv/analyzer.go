package cv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobscout/internal/domain/application"
	"jobscout/internal/llm"
	"jobscout/internal/repository"

	"github.com/google/uuid"
)

var ErrMalformedAnalysis = errors.New("malformed analysis response")

const analyzerSystemPrompt = `You are an ATS (applicant tracking system) expert. Compare a CV against a job description and ` +
	`return ONLY a JSON object with keys: "match_score" (0-100), "keyword_analysis" (object with "matched" and "missing" string arrays), ` +
	`"skills_analysis" (object with "matched" and "missing" string arrays), "experience_match" (object with "assessment" string and "years_gap" number), ` +
	`"ats_issues" (string array) and "recommendations" (string array).`

// Analyzer scores a CV against one posting's description and persists the
// structured result.
type Analyzer struct {
	llm llm.Completer
	cvs repository.CVRepository
}

func NewAnalyzer(completer llm.Completer, cvs repository.CVRepository) *Analyzer {
	return &Analyzer{llm: completer, cvs: cvs}
}

type analysisPayload struct {
	MatchScore      float64         `json:"match_score"`
	KeywordAnalysis json.RawMessage `json:"keyword_analysis"`
	SkillsAnalysis  json.RawMessage `json:"skills_analysis"`
	ExperienceMatch json.RawMessage `json:"experience_match"`
	ATSIssues       json.RawMessage `json:"ats_issues"`
	Recommendations json.RawMessage `json:"recommendations"`
}

func (a *Analyzer) Analyze(ctx context.Context, userID, jobID uuid.UUID, cvText, jobDescription string) (application.Analysis, error) {
	raw, err := a.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: analyzerSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("CV:\n%s\n\nJob description:\n%s", cvText, jobDescription)},
	})
	if err != nil {
		return application.Analysis{}, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &payload); err != nil {
		return application.Analysis{}, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}
	if payload.MatchScore < 0 || payload.MatchScore > 100 {
		return application.Analysis{}, fmt.Errorf("%w: score %.1f", ErrMalformedAnalysis, payload.MatchScore)
	}

	return a.cvs.UpsertAnalysis(ctx, application.Analysis{
		UserID:          userID,
		JobID:           jobID,
		CVText:          cvText,
		JobDescription:  jobDescription,
		MatchScore:      payload.MatchScore,
		KeywordAnalysis: orEmptyObject(payload.KeywordAnalysis),
		SkillsAnalysis:  orEmptyObject(payload.SkillsAnalysis),
		ExperienceMatch: orEmptyObject(payload.ExperienceMatch),
		ATSIssues:       orEmptyArray(payload.ATSIssues),
		Recommendations: orEmptyArray(payload.Recommendations),
	})
}

func orEmptyObject(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func orEmptyArray(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}
