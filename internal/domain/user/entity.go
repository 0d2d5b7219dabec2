package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preferences is owned and mutated only by the user; the matcher and the
// scrapers' keyword/location selection read it.
type Preferences struct {
	UserID            uuid.UUID `json:"-"`
	Roles             []string  `json:"roles"`
	Skills            []string  `json:"skills"`
	Locations         []string  `json:"locations"`
	Industries        []string  `json:"industries"`
	YearsOfExperience int       `json:"years_of_experience"`
	RemoteOnly        bool      `json:"remote_only"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ExtractedTitles holds up to three canonical search titles inferred from
// preferences; recomputed when roles or skills change materially.
type ExtractedTitles struct {
	UserID    uuid.UUID
	Titles    []string
	UpdatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListWithPreferences(ctx context.Context) ([]User, error)
}
