package repository

import (
	"context"
	"database/sql"
	"errors"

	"jobscout/internal/database"
	"jobscout/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAnalysisNotFound = errors.New("cv analysis not found")

type CVRepository interface {
	// UpsertAnalysis replaces any previous analysis for the same (user, job).
	UpsertAnalysis(ctx context.Context, a application.Analysis) (application.Analysis, error)
	GetAnalysis(ctx context.Context, userID, jobID uuid.UUID) (application.Analysis, error)
	InsertGeneratedCV(ctx context.Context, cv application.GeneratedCV) (application.GeneratedCV, error)
	ListGeneratedByApplication(ctx context.Context, applicationID uuid.UUID) ([]application.GeneratedCV, error)
}

type PostgresCVRepository struct {
	db database.DB
}

func NewPostgresCVRepository(db database.DB) *PostgresCVRepository {
	return &PostgresCVRepository{db: db}
}

func (r *PostgresCVRepository) UpsertAnalysis(ctx context.Context, a application.Analysis) (application.Analysis, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO cv_analyses (id, user_id, job_id, cv_text, job_description, match_score,
		                          keyword_analysis, skills_analysis, experience_match, ats_issues, recommendations)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (user_id, job_id) DO UPDATE SET
		   cv_text = EXCLUDED.cv_text,
		   job_description = EXCLUDED.job_description,
		   match_score = EXCLUDED.match_score,
		   keyword_analysis = EXCLUDED.keyword_analysis,
		   skills_analysis = EXCLUDED.skills_analysis,
		   experience_match = EXCLUDED.experience_match,
		   ats_issues = EXCLUDED.ats_issues,
		   recommendations = EXCLUDED.recommendations,
		   updated_at = now()
		 RETURNING id, created_at`,
		a.ID, a.UserID, a.JobID, a.CVText, a.JobDescription, a.MatchScore,
		a.KeywordAnalysis, a.SkillsAnalysis, a.ExperienceMatch, a.ATSIssues, a.Recommendations,
	)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return application.Analysis{}, err
	}
	return a, nil
}

func (r *PostgresCVRepository) GetAnalysis(ctx context.Context, userID, jobID uuid.UUID) (application.Analysis, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, job_id, cv_text, job_description, match_score,
		        keyword_analysis, skills_analysis, experience_match, ats_issues, recommendations, created_at
		 FROM cv_analyses WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	var a application.Analysis
	if err := row.Scan(&a.ID, &a.UserID, &a.JobID, &a.CVText, &a.JobDescription, &a.MatchScore,
		&a.KeywordAnalysis, &a.SkillsAnalysis, &a.ExperienceMatch, &a.ATSIssues, &a.Recommendations, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return application.Analysis{}, ErrAnalysisNotFound
		}
		return application.Analysis{}, err
	}
	return a, nil
}

func (r *PostgresCVRepository) InsertGeneratedCV(ctx context.Context, cv application.GeneratedCV) (application.GeneratedCV, error) {
	if cv.ID == uuid.Nil {
		cv.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO generated_cvs (id, application_id, cv_json, rendered_html)
		 VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		cv.ID, cv.ApplicationID, cv.CVJSON, cv.RenderedHTML,
	)
	if err := row.Scan(&cv.CreatedAt); err != nil {
		return application.GeneratedCV{}, err
	}
	return cv, nil
}

func (r *PostgresCVRepository) ListGeneratedByApplication(ctx context.Context, applicationID uuid.UUID) ([]application.GeneratedCV, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, application_id, cv_json, rendered_html, created_at
		 FROM generated_cvs WHERE application_id = $1 ORDER BY created_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.GeneratedCV, 0)
	for rows.Next() {
		var cv application.GeneratedCV
		if err := rows.Scan(&cv.ID, &cv.ApplicationID, &cv.CVJSON, &cv.RenderedHTML, &cv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
