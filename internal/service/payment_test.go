package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/employsmart/employsmart/internal/billing"
	"github.com/employsmart/employsmart/internal/domain"
)

func TestPaymentReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("no parameters fails without touching the provider", func(t *testing.T) {
		mock := billing.NewMock()
		svc := NewPaymentService(mock, nil, testLogger())

		_, err := svc.Reconcile(ctx, "", "")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Equal(t, 0, mock.Calls())
	})

	t.Run("client secret resolves the payment intent directly", func(t *testing.T) {
		mock := billing.NewMock()
		mock.PaymentIntents["pi_123"] = &stripe.PaymentIntent{
			ID:     "pi_123",
			Status: stripe.PaymentIntentStatusSucceeded,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "pi_123_secret_abc", "")
		require.NoError(t, err)
		assert.Equal(t, "succeeded", snap.Status)
		assert.Equal(t, "pi_123", snap.ID)
		assert.Equal(t, "payment_intent", snap.Type)
		assert.Equal(t, domain.PaymentOutcomeSuccess, snap.Outcome())
		assert.Equal(t, 1, mock.PaymentIntentCalls)
		assert.Equal(t, 0, mock.SessionCalls)
	})

	t.Run("non-succeeded intent reads as ambiguous", func(t *testing.T) {
		mock := billing.NewMock()
		mock.PaymentIntents["pi_9"] = &stripe.PaymentIntent{
			ID:     "pi_9",
			Status: stripe.PaymentIntentStatusProcessing,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "pi_9_secret_x", "")
		require.NoError(t, err)
		assert.Equal(t, "processing", snap.Status)
		assert.Equal(t, domain.PaymentOutcomeAmbiguous, snap.Outcome())
	})

	t.Run("paid session resolves through its payment intent", func(t *testing.T) {
		mock := billing.NewMock()
		mock.CheckoutSessions["cs_1"] = &stripe.CheckoutSession{
			ID:            "cs_1",
			PaymentStatus: "paid",
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_7"},
		}
		mock.PaymentIntents["pi_7"] = &stripe.PaymentIntent{
			ID:     "pi_7",
			Status: stripe.PaymentIntentStatusSucceeded,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "", "cs_1")
		require.NoError(t, err)
		assert.Equal(t, "pi_7", snap.ID)
		assert.Equal(t, "payment_intent", snap.Type)
		assert.Equal(t, 1, mock.SessionCalls)
		assert.Equal(t, 1, mock.PaymentIntentCalls)
	})

	t.Run("subscription session with active subscription reads as succeeded", func(t *testing.T) {
		mock := billing.NewMock()
		mock.CheckoutSessions["cs_2"] = &stripe.CheckoutSession{
			ID:           "cs_2",
			Mode:         "subscription",
			Subscription: &stripe.Subscription{ID: "sub_1"},
		}
		mock.Subscriptions["sub_1"] = &stripe.Subscription{
			ID:     "sub_1",
			Status: stripe.SubscriptionStatusActive,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "", "cs_2")
		require.NoError(t, err)
		assert.Equal(t, &domain.PaymentSnapshot{
			Status: "succeeded",
			ID:     "sub_1",
			Type:   "subscription",
		}, snap)
	})

	t.Run("trialing subscription also reads as succeeded", func(t *testing.T) {
		mock := billing.NewMock()
		mock.CheckoutSessions["cs_3"] = &stripe.CheckoutSession{
			ID:           "cs_3",
			Mode:         "subscription",
			Subscription: &stripe.Subscription{ID: "sub_2"},
		}
		mock.Subscriptions["sub_2"] = &stripe.Subscription{
			ID:     "sub_2",
			Status: stripe.SubscriptionStatusTrialing,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "", "cs_3")
		require.NoError(t, err)
		assert.Equal(t, "succeeded", snap.Status)
	})

	t.Run("canceled subscription fails reconciliation", func(t *testing.T) {
		mock := billing.NewMock()
		mock.CheckoutSessions["cs_4"] = &stripe.CheckoutSession{
			ID:           "cs_4",
			Mode:         "subscription",
			Subscription: &stripe.Subscription{ID: "sub_3"},
		}
		mock.Subscriptions["sub_3"] = &stripe.Subscription{
			ID:     "sub_3",
			Status: stripe.SubscriptionStatusCanceled,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		_, err := svc.Reconcile(ctx, "", "cs_4")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("session without intent or subscription fails", func(t *testing.T) {
		mock := billing.NewMock()
		mock.CheckoutSessions["cs_5"] = &stripe.CheckoutSession{ID: "cs_5"}
		svc := NewPaymentService(mock, nil, testLogger())

		_, err := svc.Reconcile(ctx, "", "cs_5")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("unknown session fails", func(t *testing.T) {
		mock := billing.NewMock()
		svc := NewPaymentService(mock, nil, testLogger())

		_, err := svc.Reconcile(ctx, "", "cs_missing")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("client secret wins when both parameters are present", func(t *testing.T) {
		mock := billing.NewMock()
		mock.PaymentIntents["pi_both"] = &stripe.PaymentIntent{
			ID:     "pi_both",
			Status: stripe.PaymentIntentStatusSucceeded,
		}
		svc := NewPaymentService(mock, nil, testLogger())

		snap, err := svc.Reconcile(ctx, "pi_both_secret_z", "cs_ignored")
		require.NoError(t, err)
		assert.Equal(t, "pi_both", snap.ID)
		assert.Equal(t, 0, mock.SessionCalls)
	})
}

func TestPaymentIntentIDFromClientSecret(t *testing.T) {
	assert.Equal(t, "pi_123", billing.PaymentIntentIDFromClientSecret("pi_123_secret_abc"))
	assert.Equal(t, "pi_123", billing.PaymentIntentIDFromClientSecret("pi_123"))
}
