// Upload-and-extract endpoint.
//
// Route:
//   - POST /api/ocr -> HandleExtract
//
// This endpoint keeps a flat JSON contract: 200 {"text": ...} on success,
// {"error": ...} otherwise. It is registered without a method pattern so
// the 405 response carries the same shape.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/service"
)

// maxUploadSize caps CV uploads at 20MB.
const maxUploadSize = 20 << 20

// fallbackFilename is used when the upload carries no usable filename.
const fallbackFilename = "document.pdf"

// OCRHandler handles CV text extraction uploads.
type OCRHandler struct {
	extractions *service.ExtractionService
	logger      *slog.Logger
}

// NewOCRHandler creates an OCRHandler.
func NewOCRHandler(extractions *service.ExtractionService, logger *slog.Logger) *OCRHandler {
	return &OCRHandler{
		extractions: extractions,
		logger:      logger,
	}
}

// RegisterRoutes registers the extraction routes. The upload route is
// registered without a method pattern so wrong methods get the endpoint's
// own 405 body.
func (h *OCRHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	var endpoint http.Handler = http.HandlerFunc(h.HandleExtract)
	if limit != nil {
		endpoint = limit(endpoint)
	}
	mux.Handle("/api/ocr", endpoint)
}

// RegisterHistoryRoute registers the extraction history route behind the
// given auth stack.
func (h *OCRHandler) RegisterHistoryRoute(mux *http.ServeMux, stack func(http.Handler) http.Handler) {
	mux.Handle("GET /api/extractions", stack(http.HandlerFunc(h.HandleHistory)))
}

// HandleExtract accepts a multipart upload in the "file" field, runs text
// extraction, and responds with the concatenated text. The temporary spool
// file is always removed, whether extraction succeeds or not.
func (h *OCRHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.logger.Error("failed to parse upload", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload could not be processed"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "No file was uploaded"})
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." || filename == "/" {
		filename = fallbackFilename
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	// Spool to a temp file so the document can be read twice (extraction
	// and archiving). Removed unconditionally on the way out.
	tmp, err := os.CreateTemp("", "employsmart-upload-*")
	if err != nil {
		h.logger.Error("failed to create temp file", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload could not be processed"})
		return
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		h.logger.Error("failed to spool upload", "filename", filename, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload could not be processed"})
		return
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("failed to rewind spool file", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Upload could not be processed"})
		return
	}

	var recruiterID uuid.NullUUID
	if recruiter, ok := auth.RecruiterFromContext(r.Context()); ok {
		recruiterID = uuid.NullUUID{UUID: recruiter.ID, Valid: true}
	}

	h.logger.Info("extraction requested", "filename", filename, "size", header.Size)

	result, err := h.extractions.Extract(r.Context(), recruiterID, filename, contentType, tmp)
	if err != nil {
		h.logger.Error("extraction failed", "filename", filename, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"text": result.Text})
}

// HandleHistory returns the authenticated recruiter's recent extractions.
func (h *OCRHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.extractions.History(r.Context(), recruiter.ID, int32(limit))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if history == nil {
		history = []*domain.Extraction{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"extractions": history})
}
