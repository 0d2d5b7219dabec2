package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/billing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (billing.Subscription, error)
	// Upsert activates or renews the user's subscription. Renewal resets the
	// usage counters and the expiry-warning flag.
	Upsert(ctx context.Context, s billing.Subscription) (billing.Subscription, error)
	IncrementRecommendationsUsed(ctx context.Context, userID uuid.UUID, n int) error
	IncrementCVGenerationsUsed(ctx context.Context, userID uuid.UUID) error
	// ListExpiring returns active subscriptions ending before the threshold
	// that have not been warned yet.
	ListExpiring(ctx context.Context, threshold time.Time) ([]billing.Subscription, error)
	MarkNotified(ctx context.Context, id uuid.UUID) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type PostgresSubscriptionRepository struct {
	db database.DB
}

func NewPostgresSubscriptionRepository(db database.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, plan, billing_cycle, start_date, end_date, is_active,
	payment_id, recommendations_used, cv_generations_used, notification_sent`

func (r *PostgresSubscriptionRepository) GetByUser(ctx context.Context, userID uuid.UUID) (billing.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return billing.Subscription{}, ErrSubscriptionNotFound
		}
		return billing.Subscription{}, err
	}
	return s, nil
}

func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, s billing.Subscription) (billing.Subscription, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO subscriptions (id, user_id, plan, billing_cycle, start_date, end_date, is_active, payment_id)
		 VALUES ($1,$2,$3,$4,$5,$6,true,$7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   plan = EXCLUDED.plan,
		   billing_cycle = EXCLUDED.billing_cycle,
		   start_date = EXCLUDED.start_date,
		   end_date = EXCLUDED.end_date,
		   is_active = true,
		   payment_id = EXCLUDED.payment_id,
		   recommendations_used = 0,
		   cv_generations_used = 0,
		   notification_sent = false,
		   updated_at = now()
		 RETURNING `+subscriptionColumns,
		s.ID, s.UserID, string(s.Plan), string(s.BillingCycle), s.StartDate, s.EndDate, s.PaymentID,
	)
	return scanSubscription(row)
}

func (r *PostgresSubscriptionRepository) IncrementRecommendationsUsed(ctx context.Context, userID uuid.UUID, n int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET recommendations_used = recommendations_used + $1, updated_at = now()
		 WHERE user_id = $2`, n, userID)
	return err
}

func (r *PostgresSubscriptionRepository) IncrementCVGenerationsUsed(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET cv_generations_used = cv_generations_used + 1, updated_at = now()
		 WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresSubscriptionRepository) ListExpiring(ctx context.Context, threshold time.Time) ([]billing.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE is_active = true AND notification_sent = false AND end_date <= $1 AND end_date > now()`,
		threshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]billing.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rowAdapter{rows})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSubscriptionRepository) MarkNotified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET notification_sent = true, updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *PostgresSubscriptionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE subscriptions SET is_active = false, updated_at = now()
		 WHERE is_active = true AND end_date <= $1`, now)
}

func scanSubscription(row database.Row) (billing.Subscription, error) {
	var s billing.Subscription
	var plan, cycle string
	if err := row.Scan(&s.ID, &s.UserID, &plan, &cycle, &s.StartDate, &s.EndDate, &s.IsActive,
		&s.PaymentID, &s.RecommendationsUsed, &s.CVGenerationsUsed, &s.NotificationSent); err != nil {
		return billing.Subscription{}, err
	}
	s.Plan = billing.Plan(plan)
	s.BillingCycle = billing.Cycle(cycle)
	return s, nil
}
