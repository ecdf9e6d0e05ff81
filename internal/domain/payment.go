package domain

// PaymentOutcome classifies a reconciled payment for rendering.
type PaymentOutcome string

const (
	// PaymentOutcomeSuccess means the payment definitively succeeded.
	PaymentOutcomeSuccess PaymentOutcome = "success"
	// PaymentOutcomeAmbiguous means a payment object was retrieved but its
	// status is not succeeded (processing, requires_action, ...).
	PaymentOutcomeAmbiguous PaymentOutcome = "ambiguous"
	// PaymentOutcomeError means reconciliation failed outright.
	PaymentOutcomeError PaymentOutcome = "error"
)

// PaymentSnapshot is the narrow view of a provider payment object used by
// the confirmation page: a status string, the provider object ID, and the
// object type ("payment_intent", "subscription", "transaction").
type PaymentSnapshot struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Type   string `json:"type"`
}

// Outcome maps the snapshot status to a rendering outcome.
func (p *PaymentSnapshot) Outcome() PaymentOutcome {
	if p.Status == "succeeded" {
		return PaymentOutcomeSuccess
	}
	return PaymentOutcomeAmbiguous
}
