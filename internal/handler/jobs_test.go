package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/service"
)

type fakeJobStore struct {
	jobs        map[uuid.UUID]*domain.JobPosting
	activeCount int64
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*domain.JobPosting)}
}

func (s *fakeJobStore) CreateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error) {
	s.jobs[j.ID] = j
	return j, nil
}

func (s *fakeJobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.JobPosting, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (s *fakeJobStore) ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]*domain.JobPosting, error) {
	var out []*domain.JobPosting
	for _, j := range s.jobs {
		if j.RecruiterID == recruiterID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *fakeJobStore) CountActiveJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	return s.activeCount, nil
}

func (s *fakeJobStore) UpdateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error) {
	s.jobs[j.ID] = j
	return j, nil
}

func (s *fakeJobStore) CloseJob(ctx context.Context, id uuid.UUID) error {
	if job, ok := s.jobs[id]; ok {
		job.Status = domain.JobStatusClosed
	}
	return nil
}

// authStackFor injects the given recruiter into every request, standing in
// for the session middleware.
func authStackFor(recruiter *domain.Recruiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recruiter != nil {
				r = r.WithContext(auth.WithRecruiter(r.Context(), recruiter))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newJobServer(t *testing.T, store *fakeJobStore, recruiter *domain.Recruiter) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewJobHandler(service.NewJobService(store, logger), logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, authStackFor(recruiter))
	return mux
}

func activeRecruiter() *domain.Recruiter {
	return &domain.Recruiter{
		ID:                 uuid.New(),
		Email:              "recruiter@example.com",
		Name:               "Test Recruiter",
		PlanID:             "basico",
		SubscriptionStatus: domain.SubscriptionStatusActive,
	}
}

func postJSON(t *testing.T, mux *http.ServeMux, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestJobCreate(t *testing.T) {
	store := newFakeJobStore()
	mux := newJobServer(t, store, activeRecruiter())

	rec := postJSON(t, mux, http.MethodPost, "/api/jobs", map[string]string{
		"title":       "Backend Engineer",
		"description": "Build services in Go.",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Job domain.JobPosting `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Backend Engineer", resp.Job.Title)
	assert.Equal(t, domain.JobStatusActive, resp.Job.Status)
	assert.Len(t, store.jobs, 1)
}

func TestJobCreateQuotaExceeded(t *testing.T) {
	store := newFakeJobStore()
	store.activeCount = 1 // basico allows one active posting
	mux := newJobServer(t, store, activeRecruiter())

	rec := postJSON(t, mux, http.MethodPost, "/api/jobs", map[string]string{
		"title":       "Second Posting",
		"description": "Over quota.",
	})

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ERATELIMIT, resp.Error.Code)
	assert.Empty(t, store.jobs)
}

func TestJobCreateInactiveSubscription(t *testing.T) {
	recruiter := activeRecruiter()
	recruiter.SubscriptionStatus = domain.SubscriptionStatusCanceled
	mux := newJobServer(t, newFakeJobStore(), recruiter)

	rec := postJSON(t, mux, http.MethodPost, "/api/jobs", map[string]string{
		"title":       "Blocked Posting",
		"description": "No subscription.",
	})

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestJobCreateMissingTitle(t *testing.T) {
	mux := newJobServer(t, newFakeJobStore(), activeRecruiter())

	rec := postJSON(t, mux, http.MethodPost, "/api/jobs", map[string]string{
		"description": "No title given.",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobCreateUnauthenticated(t *testing.T) {
	mux := newJobServer(t, newFakeJobStore(), nil)

	rec := postJSON(t, mux, http.MethodPost, "/api/jobs", map[string]string{
		"title":       "Posting",
		"description": "Whatever.",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobUpdateBypassesGates(t *testing.T) {
	recruiter := activeRecruiter()
	recruiter.SubscriptionStatus = domain.SubscriptionStatusPastDue

	store := newFakeJobStore()
	jobID := uuid.New()
	store.jobs[jobID] = &domain.JobPosting{
		ID:          jobID,
		RecruiterID: recruiter.ID,
		Title:       "Old Title",
		Description: "Old description.",
		Status:      domain.JobStatusActive,
	}
	mux := newJobServer(t, store, recruiter)

	rec := postJSON(t, mux, http.MethodPut, "/api/jobs/"+jobID.String(), map[string]string{
		"title":       "New Title",
		"description": "New description.",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New Title", store.jobs[jobID].Title)
}

func TestJobListEmpty(t *testing.T) {
	mux := newJobServer(t, newFakeJobStore(), activeRecruiter())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobs":[]}`, rec.Body.String())
}

func TestJobGetForeignPosting(t *testing.T) {
	store := newFakeJobStore()
	otherID := uuid.New()
	store.jobs[otherID] = &domain.JobPosting{
		ID:          otherID,
		RecruiterID: uuid.New(),
		Title:       "Someone else's posting",
		Status:      domain.JobStatusActive,
	}
	mux := newJobServer(t, store, activeRecruiter())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+otherID.String(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobClose(t *testing.T) {
	recruiter := activeRecruiter()
	store := newFakeJobStore()
	jobID := uuid.New()
	store.jobs[jobID] = &domain.JobPosting{
		ID:          jobID,
		RecruiterID: recruiter.ID,
		Title:       "To close",
		Status:      domain.JobStatusActive,
	}
	mux := newJobServer(t, store, recruiter)

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/"+jobID.String(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.JobStatusClosed, store.jobs[jobID].Status)
}
