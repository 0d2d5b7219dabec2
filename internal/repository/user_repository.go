package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"jobscout/internal/database"
	"jobscout/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrTitlesNotFound = errors.New("extracted titles not found")
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	row := r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, name, password_hash)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, email, name, password_hash, created_at`,
		u.ID, u.Email, u.Name, u.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`, id)
	return notFoundWrap(scanUser(row))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return notFoundWrap(scanUser(row))
}

// ListWithPreferences returns only users who have saved preferences. The
// matcher and the notifier iterate this set; users who never set up a
// profile are skipped entirely.
func (r *PostgresUserRepository) ListWithPreferences(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.created_at
		 FROM users u
		 JOIN user_preferences p ON p.user_id = u.id
		 ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rowAdapter{rows})
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func notFoundWrap(u user.User, err error) (user.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
