package service

import (
	"context"
	"log/slog"

	"github.com/employsmart/employsmart/internal/billing"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/metrics"
)

// PaymentService reconciles checkout return parameters against the
// payment providers for the confirmation page.
type PaymentService struct {
	billing billing.Service
	paddle  *billing.PaddleClient
	logger  *slog.Logger
}

// NewPaymentService creates the payment service. paddle may be nil when
// Paddle is not configured.
func NewPaymentService(billingService billing.Service, paddle *billing.PaddleClient, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		billing: billingService,
		paddle:  paddle,
		logger:  logger,
	}
}

// Reconcile resolves the checkout return parameters to a payment snapshot.
//
// Resolution order:
//  1. clientSecret present: retrieve the payment intent directly.
//  2. sessionID present: retrieve the checkout session; a paid session
//     with a payment intent resolves to that intent, a subscription-mode
//     session resolves through the subscription's status (active or
//     trialing reads as succeeded).
//  3. Neither present: fail immediately without touching the provider.
func (s *PaymentService) Reconcile(ctx context.Context, clientSecret, sessionID string) (*domain.PaymentSnapshot, error) {
	const op = "payment.reconcile"

	if clientSecret == "" && sessionID == "" {
		metrics.PaymentReconciliations.WithLabelValues("error").Inc()
		return nil, domain.Invalid(op, "Neither a payment client secret nor a session ID was provided.")
	}

	snapshot, err := s.reconcile(ctx, op, clientSecret, sessionID)
	if err != nil {
		metrics.PaymentReconciliations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PaymentReconciliations.WithLabelValues(string(snapshot.Outcome())).Inc()
	return snapshot, nil
}

func (s *PaymentService) reconcile(ctx context.Context, op, clientSecret, sessionID string) (*domain.PaymentSnapshot, error) {
	if clientSecret != "" {
		id := billing.PaymentIntentIDFromClientSecret(clientSecret)
		pi, err := s.billing.RetrievePaymentIntent(ctx, id)
		if err != nil {
			return nil, domain.Errorf(domain.EINVALID, op, "Could not verify the payment status.")
		}
		return &domain.PaymentSnapshot{
			Status: string(pi.Status),
			ID:     pi.ID,
			Type:   "payment_intent",
		}, nil
	}

	sess, err := s.billing.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, domain.Errorf(domain.EINVALID, op, "Could not find a valid checkout session.")
	}

	if sess.PaymentStatus == "paid" && sess.PaymentIntent != nil {
		pi, err := s.billing.RetrievePaymentIntent(ctx, sess.PaymentIntent.ID)
		if err != nil {
			return nil, domain.Errorf(domain.EINVALID, op, "Could not verify the payment status.")
		}
		return &domain.PaymentSnapshot{
			Status: string(pi.Status),
			ID:     pi.ID,
			Type:   "payment_intent",
		}, nil
	}

	if sess.Mode == "subscription" && sess.Subscription != nil {
		sub, err := s.billing.RetrieveSubscription(ctx, sess.Subscription.ID)
		if err != nil {
			return nil, domain.Errorf(domain.EINVALID, op, "Could not retrieve the subscription.")
		}
		if sub.Status == "active" || sub.Status == "trialing" {
			// Synthetic snapshot: an active subscription reads as a
			// succeeded payment on the confirmation page.
			return &domain.PaymentSnapshot{
				Status: "succeeded",
				ID:     sub.ID,
				Type:   "subscription",
			}, nil
		}
		return nil, domain.Errorf(domain.EINVALID, op, "No active subscription is associated with this checkout session.")
	}

	return nil, domain.Errorf(domain.EINVALID, op, "No payment or subscription is associated with this checkout session.")
}

// PaddleTransaction resolves a Paddle transaction to a payment snapshot.
func (s *PaymentService) PaddleTransaction(ctx context.Context, transactionID string) (*domain.PaymentSnapshot, error) {
	const op = "payment.paddle"

	if s.paddle == nil {
		return nil, domain.Errorf(domain.EINVALID, op, "Paddle payments are not configured.")
	}
	if transactionID == "" {
		return nil, domain.Invalid(op, "A transaction ID is required.")
	}

	tx, err := s.paddle.GetTransaction(ctx, transactionID)
	if err != nil {
		s.logger.Warn("paddle transaction lookup failed", "transaction_id", transactionID, "error", err)
		return nil, domain.Errorf(domain.EINVALID, op, "Could not verify the transaction.")
	}

	status := tx.Status
	if tx.Succeeded() {
		status = "succeeded"
	}
	return &domain.PaymentSnapshot{
		Status: status,
		ID:     tx.ID,
		Type:   "transaction",
	}, nil
}
