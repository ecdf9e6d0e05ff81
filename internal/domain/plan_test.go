package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanByID(t *testing.T) {
	t.Run("known plan", func(t *testing.T) {
		p := PlanByID("business")
		require.NotNil(t, p)
		assert.Equal(t, "business", p.ID)
		assert.Equal(t, 25, p.JobLimit)
		assert.True(t, p.IsRecommended)
	})

	t.Run("unknown plan falls back to basico", func(t *testing.T) {
		p := PlanByID("gold-legacy")
		require.NotNil(t, p)
		assert.Equal(t, "basico", p.ID)
		assert.Equal(t, 1, p.JobLimit)
	})

	t.Run("empty plan falls back to basico", func(t *testing.T) {
		assert.Equal(t, "basico", PlanByID("").ID)
	})
}

func TestPlanAllowsMorePostings(t *testing.T) {
	tests := []struct {
		name   string
		planID string
		active int64
		want   bool
	}{
		{"basico under limit", "basico", 0, true},
		{"basico at limit", "basico", 1, false},
		{"profesional under limit", "profesional", 2, true},
		{"profesional at limit", "profesional", 3, false},
		{"business over limit", "business", 30, false},
		{"enterprise never limited", "enterprise", 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanByID(tt.planID).AllowsMorePostings(tt.active))
		})
	}
}

func TestPlanUnlimited(t *testing.T) {
	assert.True(t, PlanByID("enterprise").Unlimited())
	assert.False(t, PlanByID("basico").Unlimited())
}

func TestPlanByStripePriceID(t *testing.T) {
	assert.Equal(t, "profesional", PlanByStripePriceID("price_profesional_monthly"))
	assert.Equal(t, "", PlanByStripePriceID("price_unknown"))
	assert.Equal(t, "", PlanByStripePriceID(""))
}

func TestPlansIsACopy(t *testing.T) {
	got := Plans()
	require.Len(t, got, 4)
	got[0].Name = "mutated"
	assert.Equal(t, "Básico", Plans()[0].Name)
}
