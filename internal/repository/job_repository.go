package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	// Upsert inserts a posting keyed by canonical URL with conflict-ignore
	// semantics and reports whether a new row was created.
	Upsert(ctx context.Context, p job.Posting) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error)
	List(ctx context.Context, limit, offset int) ([]job.Posting, error)
	// ListUnmatchedForUser returns postings with no match row for the user,
	// optionally filtered by a location substring, newest first.
	ListUnmatchedForUser(ctx context.Context, userID uuid.UUID, location string, limit int) ([]job.Posting, error)
	LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error)
	// DeleteOlderThan removes postings posted before the cutoff unless any
	// user has bookmarked them. Matches and applications go with them.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Upsert(ctx context.Context, p job.Posting) (bool, error) {
	url := strings.TrimSpace(p.URL)
	if url == "" {
		return false, errors.New("empty job url")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = time.Now().UTC()
	}
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now().UTC()
	}

	n, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, url, title, company, location, description, source, date_posted, scraped_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (url) DO NOTHING`,
		p.ID, url,
		strings.TrimSpace(p.Title),
		strings.TrimSpace(p.Company),
		strings.TrimSpace(p.Location),
		p.Description,
		string(p.Source),
		p.DatePosted,
		p.ScrapedAt,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const jobColumns = `id, url, title, company, location, description, source, date_posted, scraped_at`

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	p, err := scanPosting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return job.Posting{}, ErrJobNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}

func (r *PostgresJobRepository) List(ctx context.Context, limit, offset int) ([]job.Posting, error) {
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
		`SELECT `+jobColumns+` FROM jobs ORDER BY date_posted DESC, scraped_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostings(rows)
}

func (r *PostgresJobRepository) ListUnmatchedForUser(ctx context.Context, userID uuid.UUID, location string, limit int) ([]job.Posting, error) {
	if limit <= 0 {
		limit = 400
	}
	location = strings.TrimSpace(location)

	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE id NOT IN (SELECT job_id FROM job_matches WHERE user_id = $1)
		   AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		 ORDER BY date_posted DESC
		 LIMIT $3`,
		userID, location, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPostings(rows)
}

func (r *PostgresJobRepository) LatestScrapeTime(ctx context.Context, source job.Source) (*time.Time, error) {
	row := r.db.QueryRow(ctx,
		`SELECT scraped_at FROM jobs WHERE source = $1 ORDER BY scraped_at DESC LIMIT 1`,
		string(source),
	)
	var ts time.Time
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ts = ts.UTC()
	return &ts, nil
}

func (r *PostgresJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM jobs
		 WHERE date_posted < $1
		   AND id NOT IN (SELECT job_id FROM job_matches WHERE is_bookmarked = true)`,
		cutoff,
	)
}

func scanPosting(row database.Row) (job.Posting, error) {
	var p job.Posting
	var source string
	if err := row.Scan(&p.ID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description, &source, &p.DatePosted, &p.ScrapedAt); err != nil {
		return job.Posting{}, err
	}
	p.Source = job.Source(source)
	return p, nil
}

func collectPostings(rows database.Rows) ([]job.Posting, error) {
	out := make([]job.Posting, 0)
	for rows.Next() {
		p, err := scanPosting(rowAdapter{rows})
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowAdapter struct {
	rows database.Rows
}

func (a rowAdapter) Scan(dest ...any) error { return a.rows.Scan(dest...) }
