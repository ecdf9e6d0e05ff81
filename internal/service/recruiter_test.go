package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/email"
)

type fakeRecruiterStore struct {
	recruiters []*domain.Recruiter
	sessions   map[string]*domain.Session

	expiredDeleted int64
	deleteErr      error
}

func newFakeRecruiterStore() *fakeRecruiterStore {
	return &fakeRecruiterStore{sessions: make(map[string]*domain.Session)}
}

func (s *fakeRecruiterStore) CreateRecruiter(ctx context.Context, r *domain.Recruiter) (*domain.Recruiter, error) {
	s.recruiters = append(s.recruiters, r)
	return r, nil
}

func (s *fakeRecruiterStore) GetRecruiterByID(ctx context.Context, id uuid.UUID) (*domain.Recruiter, error) {
	for _, r := range s.recruiters {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeRecruiterStore) GetRecruiterByEmail(ctx context.Context, emailAddr string) (*domain.Recruiter, error) {
	for _, r := range s.recruiters {
		if r.Email == emailAddr {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeRecruiterStore) GetRecruiterByStripeCustomerID(ctx context.Context, customerID string) (*domain.Recruiter, error) {
	for _, r := range s.recruiters {
		if r.StripeCustomerID == customerID {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeRecruiterStore) UpdateRecruiterSubscription(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus, planID, customerID, subscriptionID string) error {
	return nil
}

func (s *fakeRecruiterStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	s.sessions[sess.TokenHash] = sess
	return nil
}

func (s *fakeRecruiterStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	sess, ok := s.sessions[tokenHash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sess, nil
}

func (s *fakeRecruiterStore) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	return nil
}

func (s *fakeRecruiterStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.expiredDeleted, nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeRecruiterStore()
	svc := NewRecruiterService(store, &email.Noop{Logger: testLogger()}, testLogger())

	recruiter, token, err := svc.Register(ctx, "Ana@Example.com", "Ana", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", recruiter.Email)
	assert.Equal(t, "basico", recruiter.PlanID)
	assert.NotEmpty(t, token)

	resolved, err := svc.GetBySessionToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, recruiter.ID, resolved.ID)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))

	_, token, err = svc.Login(ctx, "ana@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestCleanupExpiredSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the store", func(t *testing.T) {
		store := newFakeRecruiterStore()
		store.expiredDeleted = 3
		svc := NewRecruiterService(store, &email.Noop{Logger: testLogger()}, testLogger())

		require.NoError(t, svc.CleanupExpiredSessions(ctx))
	})

	t.Run("wraps store failures", func(t *testing.T) {
		store := newFakeRecruiterStore()
		store.deleteErr = errors.New("db down")
		svc := NewRecruiterService(store, &email.Noop{Logger: testLogger()}, testLogger())

		err := svc.CleanupExpiredSessions(ctx)
		require.Error(t, err)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	})
}
