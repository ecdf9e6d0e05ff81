package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PlanType distinguishes self-serve tiers from the contact-sales tier.
type PlanType string

const (
	PlanTypeSubscription PlanType = "subscription"
	PlanTypeEnterprise   PlanType = "enterprise"
)

// JobLimitUnlimited marks a plan with no cap on active postings.
const JobLimitUnlimited = -1

// Plan describes one pricing tier. The table is static configuration,
// not database state; checkout providers reference tiers by price ID.
type Plan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PriceCents    int64    `json:"-"`
	PriceDisplay  string   `json:"priceDisplay"`
	JobLimit      int      `json:"jobLimit"`
	Features      []string `json:"features"`
	IsRecommended bool     `json:"isRecommended"`
	Type          PlanType `json:"type"`
	PaddlePriceID string   `json:"paddlePriceId,omitempty"`
	StripePriceID string   `json:"stripePriceId,omitempty"`
	CTALabel      string   `json:"ctaLabel"`
}

// Unlimited reports whether the plan has no active posting cap.
func (p *Plan) Unlimited() bool {
	return p.JobLimit == JobLimitUnlimited
}

// AllowsMorePostings reports whether a recruiter with the given number of
// active postings may publish another one under this plan.
func (p *Plan) AllowsMorePostings(active int64) bool {
	if p.Unlimited() {
		return true
	}
	return active < int64(p.JobLimit)
}

var priceSprinter = message.NewPrinter(language.English)

// formatPrice renders a monthly price in whole currency units, e.g. "$1,490/mo".
func formatPrice(cents int64) string {
	return priceSprinter.Sprintf("$%d/mo", cents/100)
}

// plans is the immutable pricing table. Order matters for rendering.
var plans = []Plan{
	{
		ID:           "basico",
		Name:         "Básico",
		Description:  "For recruiters getting started.",
		PriceCents:   29_00,
		PriceDisplay: formatPrice(29_00),
		JobLimit:     1,
		Features: []string{
			"1 active job posting",
			"CV text extraction",
			"AI-drafted job descriptions",
			"Email support",
		},
		Type:          PlanTypeSubscription,
		PaddlePriceID: "pri_basico_monthly",
		StripePriceID: "price_basico_monthly",
		CTALabel:      "Start free trial",
	},
	{
		ID:           "profesional",
		Name:         "Profesional",
		Description:  "For growing teams hiring regularly.",
		PriceCents:   79_00,
		PriceDisplay: formatPrice(79_00),
		JobLimit:     3,
		Features: []string{
			"3 active job postings",
			"CV text extraction",
			"AI-drafted job descriptions",
			"Candidate pipeline",
			"Priority email support",
		},
		Type:          PlanTypeSubscription,
		PaddlePriceID: "pri_profesional_monthly",
		StripePriceID: "price_profesional_monthly",
		CTALabel:      "Start free trial",
	},
	{
		ID:           "business",
		Name:         "Business",
		Description:  "For agencies and high-volume hiring.",
		PriceCents:   199_00,
		PriceDisplay: formatPrice(199_00),
		JobLimit:     25,
		Features: []string{
			"25 active job postings",
			"CV text extraction",
			"AI-drafted job descriptions",
			"Candidate pipeline",
			"Team seats",
			"Priority support",
		},
		IsRecommended: true,
		Type:          PlanTypeSubscription,
		PaddlePriceID: "pri_business_monthly",
		StripePriceID: "price_business_monthly",
		CTALabel:      "Start free trial",
	},
	{
		ID:           "enterprise",
		Name:         "Enterprise",
		Description:  "Custom volume, onboarding and SLAs.",
		PriceDisplay: "Custom",
		JobLimit:     JobLimitUnlimited,
		Features: []string{
			"Unlimited active job postings",
			"CV text extraction",
			"AI-drafted job descriptions",
			"Dedicated account manager",
			"Custom integrations",
			"SLA",
		},
		Type:     PlanTypeEnterprise,
		CTALabel: "Contact sales",
	},
}

// Plans returns the pricing table in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID returns the plan with the given ID. Unknown or empty IDs fall
// back to the basico tier so a recruiter row with a stale plan column still
// resolves to a working quota.
func PlanByID(id string) *Plan {
	for i := range plans {
		if plans[i].ID == id {
			p := plans[i]
			return &p
		}
	}
	p := plans[0]
	return &p
}

// SetStripePriceID overrides a plan's Stripe price ID with the configured
// value. Called once at startup, before the table is served.
func SetStripePriceID(planID, priceID string) {
	if priceID == "" {
		return
	}
	for i := range plans {
		if plans[i].ID == planID {
			plans[i].StripePriceID = priceID
			return
		}
	}
}

// PlanByStripePriceID resolves a Stripe price ID to a plan ID, or "" when
// the price is not part of the table.
func PlanByStripePriceID(priceID string) string {
	if priceID == "" {
		return ""
	}
	for i := range plans {
		if plans[i].StripePriceID == priceID {
			return plans[i].ID
		}
	}
	return ""
}
