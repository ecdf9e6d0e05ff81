// Plans and pricing.
//
// Routes:
//   - GET  /api/plans -> plan table as JSON (public)
//   - GET  /pricing   -> pricing page (public)
//   - GET  /contact   -> contact-sales page (public)
//   - POST /contact   -> contact-sales form submission (public)
//   - POST /api/contact -> enterprise contact-sales request (public)
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/email"
)

// PricingHandler serves the plan table and the contact-sales form.
type PricingHandler struct {
	email    email.EmailService
	renderer *Renderer
	logger   *slog.Logger
}

// NewPricingHandler creates a PricingHandler.
func NewPricingHandler(emailService email.EmailService, renderer *Renderer, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		email:    emailService,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers the pricing routes. All public.
func (h *PricingHandler) RegisterRoutes(mux *http.ServeMux, public func(http.Handler) http.Handler) {
	mux.Handle("GET /api/plans", public(http.HandlerFunc(h.HandleListPlans)))
	mux.Handle("GET /pricing", public(http.HandlerFunc(h.HandlePricingPage)))
	mux.Handle("GET /contact", public(http.HandlerFunc(h.HandleContactPage)))
	mux.Handle("POST /contact", public(http.HandlerFunc(h.HandleContactSubmit)))
	mux.Handle("POST /api/contact", public(http.HandlerFunc(h.HandleContact)))
}

// HandleListPlans returns the static plan table.
func (h *PricingHandler) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"plans": domain.Plans()})
}

// HandlePricingPage renders the pricing page.
func (h *PricingHandler) HandlePricingPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "pricing", map[string]interface{}{
		"Title": "Pricing",
		"Plans": domain.Plans(),
	})
}

// HandleContactPage renders the contact-sales form.
func (h *PricingHandler) HandleContactPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "contact", map[string]interface{}{
		"Title": "Contact sales",
		"Email": "",
		"Name":  "",
	})
}

// HandleContactSubmit handles the contact-sales form post.
func (h *PricingHandler) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	err := h.forwardContact(r,
		r.PostFormValue("email"),
		r.PostFormValue("name"),
		r.PostFormValue("company"),
		r.PostFormValue("message"),
	)
	if err != nil {
		h.renderer.Render(w, r, "contact", map[string]interface{}{
			"Title": "Contact sales",
			"Error": domain.ErrorMessage(err),
			"Email": r.PostFormValue("email"),
			"Name":  r.PostFormValue("name"),
		})
		return
	}

	h.renderer.Render(w, r, "contact", map[string]interface{}{
		"Title": "Contact sales",
		"Sent":  true,
	})
}

// HandleContact forwards an enterprise contact request to sales.
func (h *PricingHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Company string `json:"company"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.forwardContact(r, req.Email, req.Name, req.Company, req.Message); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}

// forwardContact validates a contact request and mails it to sales.
func (h *PricingHandler) forwardContact(r *http.Request, emailAddr, name, company, message string) error {
	const op = "pricing.contact"

	emailAddr = domain.NormalizeEmail(emailAddr)
	if err := domain.ValidateEmail(op, emailAddr); err != nil {
		return err
	}
	if strings.TrimSpace(company) == "" {
		return domain.Invalid(op, "Company is required.")
	}

	if err := h.email.SendContactRequestEmail(r.Context(), emailAddr, name, company, message); err != nil {
		return domain.Internal(err, op, "failed to send contact request")
	}

	h.logger.Info("contact request forwarded", "company", company)
	return nil
}
