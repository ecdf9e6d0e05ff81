// Stripe webhook.
//
// Route:
//   - POST /webhooks/stripe -> HandleStripeWebhook
//
// PUBLIC route; authentication is the webhook signature.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v79"

	"github.com/employsmart/employsmart/internal/billing"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/metrics"
	"github.com/employsmart/employsmart/internal/service"
)

// WebhookHandler applies Stripe subscription lifecycle events to
// recruiter accounts.
type WebhookHandler struct {
	billing    billing.Service
	recruiters *service.RecruiterService
	logger     *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. billingService may be nil
// when Stripe is not configured.
func NewWebhookHandler(billingService billing.Service, recruiters *service.RecruiterService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing:    billingService,
		recruiters: recruiters,
		logger:     logger,
	}
}

// RegisterRoutes registers the webhook route on the mux.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies and dispatches incoming events.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.logger.Warn("stripe webhook received but billing is not configured")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	event, err := h.billing.VerifyWebhookSignature(body, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.logger.Info("stripe webhook received", "type", event.Type, "id", event.ID)
	metrics.WebhookEvents.WithLabelValues(string(event.Type), "accepted").Inc()

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionEvent(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	case "invoice.payment_succeeded":
		h.handlePaymentSucceeded(event)
	case "invoice.payment_failed":
		h.handlePaymentFailed(event)
	default:
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("failed to parse checkout session", "error", err)
		return
	}
	if sess.Customer == nil || sess.Subscription == nil {
		h.logger.Warn("checkout session missing customer or subscription", "session_id", sess.ID)
		return
	}

	recruiter, err := h.recruiters.GetByStripeCustomerID(webhookCtx(), sess.Customer.ID)
	if err != nil {
		// New customers are linked on the subscription event instead.
		h.logger.Info("recruiter not found by customer ID on checkout",
			"customer_id", sess.Customer.ID, "subscription_id", sess.Subscription.ID)
		return
	}

	err = h.recruiters.UpdateSubscription(webhookCtx(), recruiter.ID,
		domain.SubscriptionStatusActive, recruiter.PlanID, sess.Customer.ID, sess.Subscription.ID)
	if err != nil {
		h.logger.Error("failed to update subscription on checkout", "error", err, "recruiter_id", recruiter.ID)
	}
}

func (h *WebhookHandler) handleSubscriptionEvent(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription event", "error", err)
		return
	}
	if sub.Customer == nil {
		h.logger.Warn("subscription event missing customer", "subscription_id", sub.ID)
		return
	}

	recruiter, err := h.recruiters.GetByStripeCustomerID(webhookCtx(), sub.Customer.ID)
	if err != nil {
		h.logger.Warn("recruiter not found for subscription event",
			"customer_id", sub.Customer.ID, "subscription_id", sub.ID)
		return
	}

	planID := recruiter.PlanID
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		if mapped := h.billing.PlanForPriceID(sub.Items.Data[0].Price.ID); mapped != "" {
			planID = mapped
		}
	}

	status := domain.SubscriptionStatus(sub.Status)
	err = h.recruiters.UpdateSubscription(webhookCtx(), recruiter.ID, status, planID, sub.Customer.ID, sub.ID)
	if err != nil {
		h.logger.Error("failed to update subscription", "error", err, "recruiter_id", recruiter.ID)
		return
	}

	h.logger.Info("subscription event processed",
		"recruiter_id", recruiter.ID, "status", status, "plan", planID)
}

func (h *WebhookHandler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription deleted event", "error", err)
		return
	}
	if sub.Customer == nil {
		return
	}

	recruiter, err := h.recruiters.GetByStripeCustomerID(webhookCtx(), sub.Customer.ID)
	if err != nil {
		h.logger.Warn("recruiter not found for subscription deletion", "customer_id", sub.Customer.ID)
		return
	}

	err = h.recruiters.UpdateSubscription(webhookCtx(), recruiter.ID,
		domain.SubscriptionStatusInactive, recruiter.PlanID, sub.Customer.ID, "")
	if err != nil {
		h.logger.Error("failed to deactivate subscription", "error", err, "recruiter_id", recruiter.ID)
		return
	}
	h.logger.Info("subscription deleted", "recruiter_id", recruiter.ID, "subscription_id", sub.ID)
}

func (h *WebhookHandler) handlePaymentSucceeded(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice payment succeeded event", "error", err)
		return
	}
	if invoice.Customer == nil {
		return
	}

	recruiter, err := h.recruiters.GetByStripeCustomerID(webhookCtx(), invoice.Customer.ID)
	if err != nil {
		return
	}

	// Recovery from past_due
	if recruiter.SubscriptionStatus != domain.SubscriptionStatusActive {
		err := h.recruiters.UpdateSubscription(webhookCtx(), recruiter.ID,
			domain.SubscriptionStatusActive, recruiter.PlanID,
			recruiter.StripeCustomerID, recruiter.StripeSubscriptionID)
		if err != nil {
			h.logger.Error("failed to reactivate on payment success", "error", err, "recruiter_id", recruiter.ID)
		}
	}
}

func (h *WebhookHandler) handlePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice payment failed event", "error", err)
		return
	}
	if invoice.Customer == nil {
		return
	}

	recruiter, err := h.recruiters.GetByStripeCustomerID(webhookCtx(), invoice.Customer.ID)
	if err != nil {
		return
	}

	err = h.recruiters.UpdateSubscription(webhookCtx(), recruiter.ID,
		domain.SubscriptionStatusPastDue, recruiter.PlanID,
		recruiter.StripeCustomerID, recruiter.StripeSubscriptionID)
	if err != nil {
		h.logger.Error("failed to set past_due on payment failure", "error", err, "recruiter_id", recruiter.ID)
		return
	}
	h.logger.Warn("payment failed", "recruiter_id", recruiter.ID, "customer_id", invoice.Customer.ID)
}

// webhookCtx returns a background context; webhook processing has no user
// request context.
func webhookCtx() context.Context {
	return context.Background()
}
