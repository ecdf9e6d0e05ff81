package billing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/stripe/stripe-go/v79"

	"github.com/employsmart/employsmart/internal/domain"
)

// Mock implements Service in memory for tests and for running without
// Stripe credentials. Every retrieval is counted so tests can assert
// which provider calls happened.
type Mock struct {
	mu sync.Mutex

	PaymentIntents   map[string]*stripe.PaymentIntent
	CheckoutSessions map[string]*stripe.CheckoutSession
	Subscriptions    map[string]*stripe.Subscription

	// Err, when set, is returned from every retrieval.
	Err error

	PaymentIntentCalls int
	SessionCalls       int
	SubscriptionCalls  int
}

// NewMock creates an empty mock billing service.
func NewMock() *Mock {
	return &Mock{
		PaymentIntents:   make(map[string]*stripe.PaymentIntent),
		CheckoutSessions: make(map[string]*stripe.CheckoutSession),
		Subscriptions:    make(map[string]*stripe.Subscription),
	}
}

func (m *Mock) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentIntentCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	pi, ok := m.PaymentIntents[id]
	if !ok {
		return nil, errors.New("mock billing: payment intent not found")
	}
	return pi, nil
}

func (m *Mock) RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	sess, ok := m.CheckoutSessions[id]
	if !ok {
		return nil, errors.New("mock billing: checkout session not found")
	}
	return sess, nil
}

func (m *Mock) RetrieveSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscriptionCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	sub, ok := m.Subscriptions[id]
	if !ok {
		return nil, errors.New("mock billing: subscription not found")
	}
	return sub, nil
}

func (m *Mock) CreateCheckoutSession(ctx context.Context, recruiter *domain.Recruiter, plan *domain.Plan) (*stripe.CheckoutSession, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &stripe.CheckoutSession{ID: "cs_mock", URL: "https://checkout.example/cs_mock"}, nil
}

func (m *Mock) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, errors.New("mock billing: missing signature")
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

func (m *Mock) PlanForPriceID(priceID string) string {
	return domain.PlanByStripePriceID(priceID)
}

// Calls returns the total number of provider retrievals.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PaymentIntentCalls + m.SessionCalls + m.SubscriptionCalls
}
