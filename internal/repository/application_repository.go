package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrApplicationNotFound = errors.New("application not found")

type ApplicationRepository interface {
	// GetOrCreate returns the application for (user, job), creating it in
	// NOT_APPLIED when none exists yet.
	GetOrCreate(ctx context.Context, userID, jobID uuid.UUID) (application.Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (application.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status, appliedAt *time.Time) error
	// ListStaleApplied returns APPLIED applications whose last status change
	// predates the cutoff and that have not been reminded yet.
	ListStaleApplied(ctx context.Context, cutoff time.Time) ([]application.Application, error)
	MarkNotified(ctx context.Context, id uuid.UUID) error
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, job_id, status, applied_at, last_status_change, notification_sent, created_at`

func (r *PostgresApplicationRepository) GetOrCreate(ctx context.Context, userID, jobID uuid.UUID) (application.Application, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_applications (id, user_id, job_id)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		uuid.New(), userID, jobID,
	)
	if err != nil {
		return application.Application{}, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	)
	return scanApplication(row)
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE user_id = $1 ORDER BY last_status_change DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status, appliedAt *time.Time) error {
	n, err := r.db.Exec(ctx,
		`UPDATE job_applications
		 SET status = $1,
		     applied_at = COALESCE($2, applied_at),
		     last_status_change = now(),
		     notification_sent = false
		 WHERE id = $3`,
		string(status), appliedAt, id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *PostgresApplicationRepository) ListStaleApplied(ctx context.Context, cutoff time.Time) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE status = $1 AND last_status_change < $2 AND notification_sent = false`,
		string(application.StatusApplied), cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *PostgresApplicationRepository) MarkNotified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_applications SET notification_sent = true WHERE id = $1`, id)
	return err
}

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.JobID, &status, &a.AppliedAt, &a.LastStatusChange, &a.NotificationSent, &a.CreatedAt); err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	return a, nil
}

func collectApplications(rows database.Rows) ([]application.Application, error) {
	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rowAdapter{rows})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
