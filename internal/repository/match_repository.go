package repository

import (
	"context"
	"database/sql"
	"errors"

	"jobscout/internal/database"
	"jobscout/internal/domain/job"
	"jobscout/internal/domain/match"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchWithJob is the shape the recommendations listing returns: the match
// row joined with its posting.
type MatchWithJob struct {
	Match match.Match `json:"match"`
	Job   job.Posting `json:"job"`
}

type MatchRepository interface {
	// BulkInsert stores matches with conflict-ignore on (user_id, job_id)
	// and returns how many rows were actually created.
	BulkInsert(ctx context.Context, matches []match.Match) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeHidden bool, limit, offset int) ([]MatchWithJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (match.Match, error)
	SetBookmarked(ctx context.Context, userID, matchID uuid.UUID, bookmarked bool) error
	SetHidden(ctx context.Context, userID, matchID uuid.UUID, hidden bool) error
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) BulkInsert(ctx context.Context, matches []match.Match) (int64, error) {
	var created int64
	for _, m := range matches {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		n, err := r.db.Exec(ctx,
			`INSERT INTO job_matches (id, user_id, job_id, match_score, match_rationale)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (user_id, job_id) DO NOTHING`,
			m.ID, m.UserID, m.JobID, m.Score, m.Rationale,
		)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (r *PostgresMatchRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeHidden bool, limit, offset int) ([]MatchWithJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.user_id, m.job_id, m.match_score, m.match_rationale,
		        m.is_bookmarked, m.is_hidden, m.created_at,
		        j.id, j.url, j.title, j.company, j.location, j.description,
		        j.source, j.date_posted, j.scraped_at
		 FROM job_matches m
		 JOIN jobs j ON j.id = m.job_id
		 WHERE m.user_id = $1 AND ($2 OR m.is_hidden = false)
		 ORDER BY m.match_score DESC, m.created_at DESC
		 LIMIT $3 OFFSET $4`,
		userID, includeHidden, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MatchWithJob, 0)
	for rows.Next() {
		var mw MatchWithJob
		var source string
		if err := rows.Scan(
			&mw.Match.ID, &mw.Match.UserID, &mw.Match.JobID, &mw.Match.Score, &mw.Match.Rationale,
			&mw.Match.IsBookmarked, &mw.Match.IsHidden, &mw.Match.CreatedAt,
			&mw.Job.ID, &mw.Job.URL, &mw.Job.Title, &mw.Job.Company, &mw.Job.Location, &mw.Job.Description,
			&source, &mw.Job.DatePosted, &mw.Job.ScrapedAt,
		); err != nil {
			return nil, err
		}
		mw.Job.Source = job.Source(source)
		out = append(out, mw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (match.Match, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, job_id, match_score, match_rationale, is_bookmarked, is_hidden, created_at
		 FROM job_matches WHERE id = $1`, id)
	var m match.Match
	if err := row.Scan(&m.ID, &m.UserID, &m.JobID, &m.Score, &m.Rationale, &m.IsBookmarked, &m.IsHidden, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, err
	}
	return m, nil
}

func (r *PostgresMatchRepository) SetBookmarked(ctx context.Context, userID, matchID uuid.UUID, bookmarked bool) error {
	return r.setFlag(ctx, "is_bookmarked", userID, matchID, bookmarked)
}

func (r *PostgresMatchRepository) SetHidden(ctx context.Context, userID, matchID uuid.UUID, hidden bool) error {
	return r.setFlag(ctx, "is_hidden", userID, matchID, hidden)
}

func (r *PostgresMatchRepository) setFlag(ctx context.Context, column string, userID, matchID uuid.UUID, value bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_matches SET `+column+` = $1 WHERE id = $2 AND user_id = $3`,
		value, matchID, userID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

