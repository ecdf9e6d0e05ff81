// Recruiter account routes.
//
// Routes:
//   - POST /api/auth/register -> create account + session (public, rate limited)
//   - POST /api/auth/login    -> create session (public, rate limited)
//   - POST /api/auth/logout   -> destroy session
//   - GET  /api/me            -> current recruiter (auth)
package handler

import (
	"log/slog"
	"net/http"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/service"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	recruiters *service.RecruiterService
	logger     *slog.Logger
	isSecure   bool

	// SetCookie and ClearCookie are injected by main to avoid a handler
	// -> middleware dependency.
	SetCookie   func(w http.ResponseWriter, token string, isSecure bool)
	ClearCookie func(w http.ResponseWriter, isSecure bool)

	// OnLoginFailure and OnLoginSuccess hook the login rate limiter.
	OnLoginFailure func(ip string)
	OnLoginSuccess func(ip string)
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(recruiters *service.RecruiterService, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		recruiters: recruiters,
		logger:     logger,
		isSecure:   isSecure,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister creates an account and logs the recruiter in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	recruiter, token, err := h.recruiters.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.SetCookie(w, token, h.isSecure)
	respondJSON(w, http.StatusCreated, map[string]interface{}{"recruiter": recruiter})
}

// HandleLogin verifies credentials and starts a session.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	recruiter, token, err := h.recruiters.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.OnLoginFailure != nil && domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			h.OnLoginFailure(clientIP(r))
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if h.OnLoginSuccess != nil {
		h.OnLoginSuccess(clientIP(r))
	}
	h.SetCookie(w, token, h.isSecure)
	respondJSON(w, http.StatusOK, map[string]interface{}{"recruiter": recruiter})
}

// HandleLogout destroys the current session. Idempotent.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("employsmart_session"); err == nil {
		if err := h.recruiters.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout failed", "error", err)
		}
	}
	h.ClearCookie(w, h.isSecure)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated recruiter with their plan.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recruiter": recruiter,
		"plan":      recruiter.Plan(),
	})
}

// clientIP extracts the client IP for rate limiter hooks.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}
