// Package service implements the application use cases on top of the
// repository, billing, OCR, and email layers.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/email"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// RecruiterStore is the persistence surface the recruiter service needs.
// *repository.Queries satisfies it.
type RecruiterStore interface {
	CreateRecruiter(ctx context.Context, r *domain.Recruiter) (*domain.Recruiter, error)
	GetRecruiterByID(ctx context.Context, id uuid.UUID) (*domain.Recruiter, error)
	GetRecruiterByEmail(ctx context.Context, email string) (*domain.Recruiter, error)
	GetRecruiterByStripeCustomerID(ctx context.Context, customerID string) (*domain.Recruiter, error)
	UpdateRecruiterSubscription(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus, planID, customerID, subscriptionID string) error

	CreateSession(ctx context.Context, s *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// RecruiterService manages accounts, sessions, and subscription sync.
type RecruiterService struct {
	store  RecruiterStore
	email  email.EmailService
	logger *slog.Logger
}

// NewRecruiterService creates the recruiter service.
func NewRecruiterService(store RecruiterStore, emailService email.EmailService, logger *slog.Logger) *RecruiterService {
	return &RecruiterService{
		store:  store,
		email:  emailService,
		logger: logger,
	}
}

// Register creates an account and an initial session. The welcome email
// is best-effort; a mail failure never fails registration.
func (s *RecruiterService) Register(ctx context.Context, emailAddr, name, password string) (*domain.Recruiter, string, error) {
	const op = "recruiter.register"

	emailAddr = domain.NormalizeEmail(emailAddr)
	if err := domain.ValidateEmail(op, emailAddr); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", domain.Invalid(op, "Name is required.")
	}
	if len(password) < 8 {
		return nil, "", domain.Invalid(op, "Password must be at least 8 characters.")
	}

	if _, err := s.store.GetRecruiterByEmail(ctx, emailAddr); err == nil {
		return nil, "", domain.Conflict(op, "An account with this email already exists.")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.Internal(err, op, "failed to check existing account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to hash password")
	}

	recruiter, err := s.store.CreateRecruiter(ctx, &domain.Recruiter{
		ID:                 uuid.New(),
		Email:              emailAddr,
		Name:               strings.TrimSpace(name),
		PasswordHash:       string(hash),
		PlanID:             "basico",
		SubscriptionStatus: domain.SubscriptionStatusInactive,
	})
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to create account")
	}

	if err := s.email.SendWelcomeEmail(ctx, recruiter.Email, recruiter.Name); err != nil {
		s.logger.Warn("welcome email failed", "recruiter_id", recruiter.ID, "error", err)
	}

	token, err := s.createSession(ctx, recruiter.ID)
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to create session")
	}

	s.logger.Info("recruiter registered", "recruiter_id", recruiter.ID)
	return recruiter, token, nil
}

// Login verifies credentials and creates a session.
func (s *RecruiterService) Login(ctx context.Context, emailAddr, password string) (*domain.Recruiter, string, error) {
	const op = "recruiter.login"

	recruiter, err := s.store.GetRecruiterByEmail(ctx, domain.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.Unauthorized(op, "Invalid email or password.")
		}
		return nil, "", domain.Internal(err, op, "failed to look up account")
	}

	if bcrypt.CompareHashAndPassword([]byte(recruiter.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.Unauthorized(op, "Invalid email or password.")
	}

	token, err := s.createSession(ctx, recruiter.ID)
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to create session")
	}
	return recruiter, token, nil
}

// Logout removes the session for the given raw token. Idempotent.
func (s *RecruiterService) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSessionByTokenHash(ctx, auth.HashToken(token))
}

// GetBySessionToken resolves a raw session token to its recruiter.
// Expired sessions are deleted on sight.
func (s *RecruiterService) GetBySessionToken(ctx context.Context, token string) (*domain.Recruiter, error) {
	const op = "recruiter.session"

	hash := auth.HashToken(token)
	session, err := s.store.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "Session is not valid.")
		}
		return nil, domain.Internal(err, op, "failed to look up session")
	}
	if session.Expired() {
		_ = s.store.DeleteSessionByTokenHash(ctx, hash)
		return nil, domain.Unauthorized(op, "Session has expired.")
	}

	recruiter, err := s.store.GetRecruiterByID(ctx, session.RecruiterID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load account")
	}
	return recruiter, nil
}

// GetByStripeCustomerID resolves a Stripe customer to a recruiter.
func (s *RecruiterService) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.Recruiter, error) {
	const op = "recruiter.by_customer"

	recruiter, err := s.store.GetRecruiterByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "recruiter", customerID)
		}
		return nil, domain.Internal(err, op, "failed to look up account")
	}
	return recruiter, nil
}

// UpdateSubscription syncs provider subscription state onto the account.
func (s *RecruiterService) UpdateSubscription(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus, planID, customerID, subscriptionID string) error {
	const op = "recruiter.update_subscription"

	if err := s.store.UpdateRecruiterSubscription(ctx, id, status, planID, customerID, subscriptionID); err != nil {
		return domain.Internal(err, op, "failed to update subscription")
	}
	s.logger.Info("subscription updated",
		"recruiter_id", id,
		"status", status,
		"plan", planID,
	)
	return nil
}

// CleanupExpiredSessions removes sessions past their expiry. Called
// periodically from main.
func (s *RecruiterService) CleanupExpiredSessions(ctx context.Context) error {
	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return domain.Internal(err, "recruiter.session_cleanup", "failed to delete expired sessions")
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return nil
}

func (s *RecruiterService) createSession(ctx context.Context, recruiterID uuid.UUID) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	err = s.store.CreateSession(ctx, &domain.Session{
		ID:          uuid.New(),
		RecruiterID: recruiterID,
		TokenHash:   auth.HashToken(token),
		ExpiresAt:   time.Now().Add(SessionTTL),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
