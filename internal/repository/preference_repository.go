package repository

import (
	"context"
	"database/sql"
	"errors"

	"jobscout/internal/database"
	"jobscout/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

type PreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (user.Preferences, error)
	Upsert(ctx context.Context, p user.Preferences) (user.Preferences, error)
	GetTitles(ctx context.Context, userID uuid.UUID) (user.ExtractedTitles, error)
	SaveTitles(ctx context.Context, userID uuid.UUID, titles []string) error
	// DistinctLocations returns every location that appears in any user's
	// preferences, deduplicated. The location-aware scrapers search each one.
	DistinctLocations(ctx context.Context) ([]string, error)
	// DistinctTitles returns every extracted search title across all users.
	DistinctTitles(ctx context.Context) ([]string, error)
}

type PostgresPreferenceRepository struct {
	db database.DB
}

func NewPostgresPreferenceRepository(db database.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

func (r *PostgresPreferenceRepository) Get(ctx context.Context, userID uuid.UUID) (user.Preferences, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, roles, skills, locations, industries, years_of_experience, remote_only, updated_at
		 FROM user_preferences WHERE user_id = $1`, userID)
	var p user.Preferences
	if err := row.Scan(&p.UserID, &p.Roles, &p.Skills, &p.Locations, &p.Industries, &p.YearsOfExperience, &p.RemoteOnly, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return user.Preferences{}, ErrPreferencesNotFound
		}
		return user.Preferences{}, err
	}
	return p, nil
}

func (r *PostgresPreferenceRepository) Upsert(ctx context.Context, p user.Preferences) (user.Preferences, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO user_preferences (user_id, roles, skills, locations, industries, years_of_experience, remote_only)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   roles = EXCLUDED.roles,
		   skills = EXCLUDED.skills,
		   locations = EXCLUDED.locations,
		   industries = EXCLUDED.industries,
		   years_of_experience = EXCLUDED.years_of_experience,
		   remote_only = EXCLUDED.remote_only,
		   updated_at = now()
		 RETURNING user_id, roles, skills, locations, industries, years_of_experience, remote_only, updated_at`,
		p.UserID, p.Roles, p.Skills, p.Locations, p.Industries, p.YearsOfExperience, p.RemoteOnly,
	)
	var saved user.Preferences
	if err := row.Scan(&saved.UserID, &saved.Roles, &saved.Skills, &saved.Locations, &saved.Industries, &saved.YearsOfExperience, &saved.RemoteOnly, &saved.UpdatedAt); err != nil {
		return user.Preferences{}, err
	}
	return saved, nil
}

func (r *PostgresPreferenceRepository) GetTitles(ctx context.Context, userID uuid.UUID) (user.ExtractedTitles, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, COALESCE(title_1, ''), COALESCE(title_2, ''), COALESCE(title_3, ''), updated_at
		 FROM extracted_job_titles WHERE user_id = $1`, userID)

	var t user.ExtractedTitles
	var t1, t2, t3 string
	if err := row.Scan(&t.UserID, &t1, &t2, &t3, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return user.ExtractedTitles{}, ErrTitlesNotFound
		}
		return user.ExtractedTitles{}, err
	}
	for _, s := range []string{t1, t2, t3} {
		if s != "" {
			t.Titles = append(t.Titles, s)
		}
	}
	return t, nil
}

func (r *PostgresPreferenceRepository) SaveTitles(ctx context.Context, userID uuid.UUID, titles []string) error {
	var slot [3]any
	for i := range slot {
		if i < len(titles) && titles[i] != "" {
			slot[i] = titles[i]
		}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO extracted_job_titles (user_id, title_1, title_2, title_3)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   title_1 = EXCLUDED.title_1,
		   title_2 = EXCLUDED.title_2,
		   title_3 = EXCLUDED.title_3,
		   updated_at = now()`,
		userID, slot[0], slot[1], slot[2],
	)
	return err
}

func (r *PostgresPreferenceRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT unnest(locations) FROM user_preferences WHERE remote_only = false`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (r *PostgresPreferenceRepository) DistinctTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT t FROM (
		   SELECT title_1 AS t FROM extracted_job_titles
		   UNION SELECT title_2 FROM extracted_job_titles
		   UNION SELECT title_3 FROM extracted_job_titles
		 ) titles WHERE t IS NOT NULL AND t <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func collectStrings(rows database.Rows) ([]string, error) {
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
