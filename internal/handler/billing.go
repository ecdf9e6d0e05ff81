// Checkout and payment confirmation.
//
// Routes:
//   - POST /api/checkout                        -> start a subscription checkout (auth)
//   - GET  /api/stripe/retrieve-checkout-session?sessionId=   -> session proxy (public)
//   - GET  /api/stripe/retrieve-subscription?subscriptionId=  -> subscription proxy (public)
//   - GET  /api/paddle/transaction?transactionId=             -> Paddle return leg (public)
//   - GET  /payment-success                     -> confirmation page (public)
//
// The proxy endpoints exist because the provider's secret key can't be
// exposed to the browser; they return only the narrow fields the
// confirmation flow consumes.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/billing"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/service"
)

// BillingHandler handles checkout and payment confirmation.
type BillingHandler struct {
	billing  billing.Service
	payments *service.PaymentService
	renderer *Renderer
	logger   *slog.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(billingService billing.Service, payments *service.PaymentService, renderer *Renderer, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:  billingService,
		payments: payments,
		renderer: renderer,
		logger:   logger,
	}
}

// RegisterRoutes registers billing routes. authStack wraps the checkout
// route; the confirmation routes take the public stack because the
// recruiter returns from the provider without a session guarantee.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, public, authStack func(http.Handler) http.Handler) {
	mux.Handle("POST /api/checkout", authStack(http.HandlerFunc(h.HandleCreateCheckout)))
	mux.Handle("GET /api/stripe/retrieve-checkout-session", public(http.HandlerFunc(h.HandleRetrieveCheckoutSession)))
	mux.Handle("GET /api/stripe/retrieve-subscription", public(http.HandlerFunc(h.HandleRetrieveSubscription)))
	mux.Handle("GET /api/paddle/transaction", public(http.HandlerFunc(h.HandlePaddleTransaction)))
	mux.Handle("GET /payment-success", public(http.HandlerFunc(h.HandlePaymentSuccess)))
}

// HandleCreateCheckout starts a subscription checkout for a plan.
func (h *BillingHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	recruiter, ok := auth.RecruiterFromContext(r.Context())
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	plan := domain.PlanByID(req.PlanID)
	if plan.Type == domain.PlanTypeEnterprise {
		ErrorResponse(w, r, h.logger, domain.Invalid("billing.checkout", "The enterprise plan is sold through our sales team."))
		return
	}

	sess, err := h.billing.CreateCheckoutSession(r.Context(), recruiter, plan)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, "billing.checkout", "failed to start checkout"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

// HandleRetrieveCheckoutSession proxies a checkout session lookup,
// returning only the fields the confirmation flow reads.
func (h *BillingHandler) HandleRetrieveCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "sessionId is required"})
		return
	}

	sess, err := h.billing.RetrieveCheckoutSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Warn("checkout session lookup failed", "session_id", sessionID, "error", err)
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Could not find a valid checkout session."})
		return
	}

	view := map[string]interface{}{
		"id":             sess.ID,
		"payment_status": sess.PaymentStatus,
		"mode":           sess.Mode,
	}
	if sess.PaymentIntent != nil {
		view["payment_intent"] = sess.PaymentIntent.ID
	}
	if sess.Subscription != nil {
		view["subscription"] = sess.Subscription.ID
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"session": view})
}

// HandleRetrieveSubscription proxies a subscription lookup.
func (h *BillingHandler) HandleRetrieveSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID := r.URL.Query().Get("subscriptionId")
	if subscriptionID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "subscriptionId is required"})
		return
	}

	sub, err := h.billing.RetrieveSubscription(r.Context(), subscriptionID)
	if err != nil {
		h.logger.Warn("subscription lookup failed", "subscription_id", subscriptionID, "error", err)
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Could not retrieve the subscription."})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": map[string]interface{}{
			"id":     sub.ID,
			"status": sub.Status,
		},
	})
}

// HandlePaddleTransaction resolves a Paddle transaction to the snapshot
// shape used by the confirmation flow.
func (h *BillingHandler) HandlePaddleTransaction(w http.ResponseWriter, r *http.Request) {
	snap, err := h.payments.PaddleTransaction(r.Context(), r.URL.Query().Get("transactionId"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"payment": snap})
}

// HandlePaymentSuccess renders the confirmation page. Exactly one of the
// three panels renders: success, ambiguous (payment retrieved but not
// succeeded), or error.
func (h *BillingHandler) HandlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	clientSecret := r.URL.Query().Get("payment_intent_client_secret")
	sessionID := r.URL.Query().Get("session_id")

	data := map[string]interface{}{
		"Title": "Payment confirmation",
	}

	snap, err := h.payments.Reconcile(r.Context(), clientSecret, sessionID)
	if err != nil {
		data["Outcome"] = domain.PaymentOutcomeError
		data["Message"] = domain.ErrorMessage(err)
	} else {
		data["Outcome"] = snap.Outcome()
		data["Payment"] = snap
	}

	h.renderer.Render(w, r, "payment_result", data)
}
