// Package billing wraps the payment providers. Stripe is the system of
// record for subscriptions; Paddle covers the checkout return leg in
// regions where Stripe is unavailable.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/employsmart/employsmart/internal/domain"
)

// Service is the narrow Stripe surface the application consumes.
type Service interface {
	// RetrievePaymentIntent fetches a payment intent by ID.
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)

	// RetrieveCheckoutSession fetches a checkout session with its payment
	// intent and subscription expanded.
	RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)

	// RetrieveSubscription fetches a subscription by ID.
	RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error)

	// CreateCheckoutSession starts a subscription checkout for a plan.
	CreateCheckoutSession(ctx context.Context, recruiter *domain.Recruiter, plan *domain.Plan) (*stripe.CheckoutSession, error)

	// VerifyWebhookSignature validates a webhook payload and returns the
	// parsed event.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)

	// PlanForPriceID maps a Stripe price ID to a plan ID ("" if unknown).
	PlanForPriceID(priceID string) string
}

// Config holds Stripe credentials and redirect URLs.
type Config struct {
	SecretKey     string
	WebhookSecret string

	// SuccessURL receives {CHECKOUT_SESSION_ID} substitution by Stripe.
	SuccessURL string
	CancelURL  string
}

type stripeService struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *slog.Logger
}

// NewStripeService configures the global Stripe client key and returns
// the service.
func NewStripeService(cfg Config, logger *slog.Logger) Service {
	stripe.Key = cfg.SecretKey
	return &stripeService{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger,
	}
}

func (s *stripeService) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return pi, nil
}

func (s *stripeService) RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	params.AddExpand("subscription")
	sess, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", id, err)
	}
	return sess, nil
}

func (s *stripeService) RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *stripeService) CreateCheckoutSession(ctx context.Context, recruiter *domain.Recruiter, plan *domain.Plan) (*stripe.CheckoutSession, error) {
	if plan.Type == domain.PlanTypeEnterprise || plan.StripePriceID == "" {
		return nil, fmt.Errorf("plan %s is not purchasable via checkout", plan.ID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		CustomerEmail:     stripe.String(recruiter.Email),
		ClientReferenceID: stripe.String(recruiter.ID.String()),
	}
	params.Context = ctx
	if recruiter.StripeCustomerID != "" {
		params.Customer = stripe.String(recruiter.StripeCustomerID)
		params.CustomerEmail = nil
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session for plan %s: %w", plan.ID, err)
	}

	s.logger.Info("checkout session created",
		"session_id", sess.ID,
		"plan", plan.ID,
		"recruiter_id", recruiter.ID,
	)
	return sess, nil
}

func (s *stripeService) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, s.webhookSecret)
}

func (s *stripeService) PlanForPriceID(priceID string) string {
	return domain.PlanByStripePriceID(priceID)
}

// PaymentIntentIDFromClientSecret extracts the intent ID from a client
// secret of the form "pi_XXX_secret_YYY". Returns the input unchanged when
// it doesn't carry a secret suffix.
func PaymentIntentIDFromClientSecret(clientSecret string) string {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found {
		return clientSecret
	}
	return id
}
