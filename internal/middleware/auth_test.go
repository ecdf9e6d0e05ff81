package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
)

type fakeSessionResolver struct {
	recruiter *domain.Recruiter
	err       error
}

func (f *fakeSessionResolver) GetBySessionToken(ctx context.Context, token string) (*domain.Recruiter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recruiter, nil
}

func TestWithRecruiter_ValidSession(t *testing.T) {
	recruiter := &domain.Recruiter{ID: uuid.New(), Email: "r@example.com"}
	mw := NewAuthMiddleware(&fakeSessionResolver{recruiter: recruiter}, testLogger(), false)

	var got *domain.Recruiter
	handler := mw.WithRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.RecruiterFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil || got.ID != recruiter.ID {
		t.Error("expected recruiter in request context")
	}
}

func TestWithRecruiter_NoCookie(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionResolver{}, testLogger(), false)

	handler := mw.WithRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.RecruiterFromContext(r.Context()); ok {
			t.Error("expected no recruiter in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/pricing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestWithRecruiter_InvalidSessionClearsCookie(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionResolver{err: domain.Unauthorized("test", "invalid session")}, testLogger(), false)

	handler := mw.WithRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/pricing", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 (public route continues), got %d", rec.Code)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected stale session cookie to be cleared")
	}
}

func TestRequireRecruiter_APIRequest(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionResolver{}, testLogger(), false)

	handler := mw.RequireRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for API request, got %d", rec.Code)
	}
}

func TestRequireRecruiter_PageRedirects(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionResolver{}, testLogger(), false)

	handler := mw.RequireRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303 redirect for page request, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?return_to=/dashboard" {
		t.Errorf("unexpected redirect location %q", loc)
	}
}

func TestRequireRecruiter_Authenticated(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionResolver{}, testLogger(), false)

	handler := mw.RequireRecruiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recruiter := &domain.Recruiter{ID: uuid.New()}
	req := httptest.NewRequest("GET", "/api/jobs", nil)
	req = req.WithContext(auth.WithRecruiter(req.Context(), recruiter))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for authenticated request, got %d", rec.Code)
	}
}

func TestStackOrder(t *testing.T) {
	var order []string
	mk := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	stack := Stack(mk("outer"), mk("inner"))
	handler := stack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"outer", "inner", "handler"}
	for i, name := range want {
		if i >= len(order) || order[i] != name {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}
