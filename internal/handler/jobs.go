// Job posting JSON API.
//
// Routes (all require an authenticated recruiter):
//   - POST   /api/jobs      -> create posting (publishing gates apply)
//   - GET    /api/jobs      -> list own postings
//   - GET    /api/jobs/{id} -> fetch one posting
//   - PUT    /api/jobs/{id} -> edit posting (bypasses publishing gates)
//   - DELETE /api/jobs/{id} -> close posting
package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/service"
)

// JobHandler handles the job posting API.
type JobHandler struct {
	jobs   *service.JobService
	logger *slog.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// RegisterRoutes registers the job API routes on the mux, wrapped in the
// provided auth stack.
func (h *JobHandler) RegisterRoutes(mux *http.ServeMux, stack func(http.Handler) http.Handler) {
	mux.Handle("POST /api/jobs", stack(http.HandlerFunc(h.HandleCreate)))
	mux.Handle("GET /api/jobs", stack(http.HandlerFunc(h.HandleList)))
	mux.Handle("GET /api/jobs/{id}", stack(http.HandlerFunc(h.HandleGet)))
	mux.Handle("PUT /api/jobs/{id}", stack(http.HandlerFunc(h.HandleUpdate)))
	mux.Handle("DELETE /api/jobs/{id}", stack(http.HandlerFunc(h.HandleClose)))
}

// HandleCreate publishes a new posting.
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var draft domain.JobDraft
	if err := decodeJSON(r, &draft); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), recruiter, draft)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"job": job})
}

// HandleList returns the recruiter's postings.
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	jobs, err := h.jobs.List(r.Context(), recruiter)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if jobs == nil {
		jobs = []*domain.JobPosting{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleGet fetches one posting.
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.Get(r.Context(), recruiter, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// HandleUpdate edits a posting.
func (h *JobHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var draft domain.JobDraft
	if err := decodeJSON(r, &draft); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.Update(r.Context(), recruiter, id, draft)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// HandleClose closes a posting, releasing its quota slot.
func (h *JobHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.jobs.Close(r.Context(), recruiter, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.Invalid("", "The ID in the URL is not valid.")
	}
	return id, nil
}
