package models

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/payfirst/internal/health"
)

func TestNewHealthMetrics_UnboundedRunway(t *testing.T) {
	m := NewHealthMetrics(health.Metrics{CashRunwayMonths: math.Inf(1), MonthlyBurnRate: 1})
	assert.True(t, m.RunwayUnbounded)
	assert.Nil(t, m.CashRunwayMonths)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cash_runway_months":null`)
	assert.Contains(t, string(data), `"runway_unbounded":true`)
}

func TestNewHealthMetrics_FiniteRunwayRounded(t *testing.T) {
	m := NewHealthMetrics(health.Metrics{CashRunwayMonths: 7.0866141, SavingsRate: 33.33333})
	require.NotNil(t, m.CashRunwayMonths)
	assert.Equal(t, 7.09, *m.CashRunwayMonths)
	assert.Equal(t, 33.33, m.SavingsRate)
	assert.False(t, m.RunwayUnbounded)
}

func TestNewHealthReport(t *testing.T) {
	res := health.Result{
		Metrics:    health.Metrics{CashRunwayMonths: 2},
		FinalScore: 57,
		Status:     health.StatusModerateRisk,
		Breakdown:  health.Breakdown{Trend: 7},
	}
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	r := NewHealthReport(res, FallbackNarrative(), false, false, at)
	assert.Nil(t, r.Breakdown)
	assert.Equal(t, FallbackSummary, r.Narrative.Summary)
	assert.False(t, r.NarrativeAvailable)

	r = NewHealthReport(res, Narrative{Summary: "ok"}, true, true, at)
	require.NotNil(t, r.Breakdown)
	assert.Equal(t, 7.0, r.Breakdown.Trend)
	assert.Equal(t, health.StatusModerateRisk, r.Status)
}
