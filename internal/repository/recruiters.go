package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/domain"
)

const recruiterColumns = `id, email, name, password_hash, plan_id, subscription_status,
	stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func scanRecruiter(row interface{ Scan(...interface{}) error }) (*domain.Recruiter, error) {
	var r domain.Recruiter
	err := row.Scan(
		&r.ID,
		&r.Email,
		&r.Name,
		&r.PasswordHash,
		&r.PlanID,
		&r.SubscriptionStatus,
		&r.StripeCustomerID,
		&r.StripeSubscriptionID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecruiter inserts a new recruiter row.
func (q *Queries) CreateRecruiter(ctx context.Context, r *domain.Recruiter) (*domain.Recruiter, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO recruiters (id, email, name, password_hash, plan_id, subscription_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+recruiterColumns,
		r.ID, r.Email, r.Name, r.PasswordHash, r.PlanID, r.SubscriptionStatus,
	)
	return scanRecruiter(row)
}

// GetRecruiterByID fetches a recruiter by primary key.
func (q *Queries) GetRecruiterByID(ctx context.Context, id uuid.UUID) (*domain.Recruiter, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+recruiterColumns+` FROM recruiters WHERE id = $1`, id)
	return scanRecruiter(row)
}

// GetRecruiterByEmail fetches a recruiter by normalized email.
func (q *Queries) GetRecruiterByEmail(ctx context.Context, email string) (*domain.Recruiter, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+recruiterColumns+` FROM recruiters WHERE email = $1`, email)
	return scanRecruiter(row)
}

// GetRecruiterByStripeCustomerID fetches a recruiter by Stripe customer.
func (q *Queries) GetRecruiterByStripeCustomerID(ctx context.Context, customerID string) (*domain.Recruiter, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+recruiterColumns+` FROM recruiters WHERE stripe_customer_id = $1`, customerID)
	return scanRecruiter(row)
}

// UpdateRecruiterSubscription syncs provider-side subscription state onto
// the recruiter row. Empty plan and subscription IDs are written as-is so
// a deletion event can clear them.
func (q *Queries) UpdateRecruiterSubscription(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus, planID, customerID, subscriptionID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE recruiters
		SET subscription_status = $2,
		    plan_id = $3,
		    stripe_customer_id = $4,
		    stripe_subscription_id = $5,
		    updated_at = now()
		WHERE id = $1`,
		id, status, planID, customerID, subscriptionID,
	)
	return err
}
