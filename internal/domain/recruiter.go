package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the provider-side subscription state that is
// synced onto the recruiter row.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

// CanPublish reports whether the status permits publishing new postings.
// Only active and trialing subscriptions may publish; every other state
// (including past_due) is blocked until payment recovers.
func (s SubscriptionStatus) CanPublish() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// Recruiter is an account that owns job postings and a subscription.
type Recruiter struct {
	ID                   uuid.UUID          `json:"id"`
	Email                string             `json:"email"`
	Name                 string             `json:"name"`
	PasswordHash         string             `json:"-"`
	PlanID               string             `json:"planId"`
	SubscriptionStatus   SubscriptionStatus `json:"subscriptionStatus"`
	StripeCustomerID     string             `json:"-"`
	StripeSubscriptionID string             `json:"-"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// Plan resolves the recruiter's pricing tier.
func (r *Recruiter) Plan() *Plan {
	return PlanByID(r.PlanID)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the address parses per RFC 5322.
func ValidateEmail(op, email string) error {
	if email == "" {
		return Invalid(op, "Email is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid(op, "Email address is not valid.")
	}
	return nil
}

// Session is a server-side login session. The token is stored hashed;
// only the cookie carries the raw value.
type Session struct {
	ID          uuid.UUID
	RecruiterID uuid.UUID
	TokenHash   string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
