package services_test

import (
	"testing"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestWellnessScorer_Score(t *testing.T) {
	scorer := services.NewWellnessScorer(domain.DefaultPolicy())

	t.Run("healthy", func(t *testing.T) {
		w := scorer.Score(domain.WellnessInput{OpenTickets: 3, SLACompliance: 90, EstimatedHours: 100})

		assert.Zero(t, w.BurnoutRisk)
		assert.Equal(t, 100.0, w.BalanceScore)
		assert.Equal(t, domain.WorkloadLow, w.WorkloadLevel)
		assert.Equal(t, domain.BalanceExcellent, w.BalanceStatus)
		assert.Empty(t, w.Messages)
	})

	t.Run("every condition triggered", func(t *testing.T) {
		w := scorer.Score(domain.WellnessInput{
			OpenTickets:     22,
			SLACompliance:   70,
			ExceededTickets: 6,
			EstimatedHours:  170,
		})

		assert.Equal(t, 100.0, w.BurnoutRisk)
		assert.Zero(t, w.BalanceScore)
		assert.Equal(t, domain.WorkloadCritical, w.WorkloadLevel)
		assert.Equal(t, domain.BalanceCritical, w.BalanceStatus)
		assert.Len(t, w.Messages, 5)
	})

	t.Run("one message per condition", func(t *testing.T) {
		w := scorer.Score(domain.WellnessInput{OpenTickets: 16, SLACompliance: 80})

		assert.Equal(t, 30.0, w.BurnoutRisk)
		assert.Equal(t, 70.0, w.BalanceScore)
		assert.Equal(t, domain.BalanceGood, w.BalanceStatus)
		assert.Equal(t, []string{"Fila com 16 chamados abertos, acima do limite de 15."}, w.Messages)
	})

	t.Run("boundaries are exclusive", func(t *testing.T) {
		w := scorer.Score(domain.WellnessInput{OpenTickets: 15, SLACompliance: 75, ExceededTickets: 5, EstimatedHours: 160})

		assert.Zero(t, w.BurnoutRisk)
		assert.Equal(t, domain.WorkloadHigh, w.WorkloadLevel)
	})

	t.Run("workload levels", func(t *testing.T) {
		assert.Equal(t, domain.WorkloadLow, scorer.Score(domain.WellnessInput{OpenTickets: 5, SLACompliance: 100}).WorkloadLevel)
		assert.Equal(t, domain.WorkloadModerate, scorer.Score(domain.WellnessInput{OpenTickets: 8, SLACompliance: 100}).WorkloadLevel)
		assert.Equal(t, domain.WorkloadHigh, scorer.Score(domain.WellnessInput{OpenTickets: 12, SLACompliance: 100}).WorkloadLevel)
	})

	t.Run("balance stays in range", func(t *testing.T) {
		for _, n := range []int{0, 10, 16, 21, 100} {
			w := scorer.Score(domain.WellnessInput{OpenTickets: n, ExceededTickets: n})
			assert.GreaterOrEqual(t, w.BalanceScore, 0.0)
			assert.LessOrEqual(t, w.BalanceScore, 100.0)
			assert.InDelta(t, 100.0, w.BurnoutRisk+w.BalanceScore, 1e-9)
		}
	})
}
