package services

import (
	"fmt"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// WellnessScorer computes an additive workload and burnout score. The score
// is a bounded heuristic, not a probability.
type WellnessScorer struct {
	policy domain.WellnessPolicy
}

// NewWellnessScorer creates a scorer bound to a policy.
func NewWellnessScorer(policy domain.Policy) *WellnessScorer {
	return &WellnessScorer{policy: policy.Wellness}
}

// Score adds one term per triggered condition and emits one message each.
func (s *WellnessScorer) Score(in domain.WellnessInput) domain.Wellness {
	p := s.policy
	w := domain.Wellness{Messages: []string{}}

	if in.OpenTickets > p.OpenTickets {
		w.BurnoutRisk += p.OpenTicketsRisk
		w.Messages = append(w.Messages, fmt.Sprintf(
			"Fila com %s chamados abertos, acima do limite de %d.", formatCount(in.OpenTickets), p.OpenTickets))
	}
	if in.OpenTickets > p.OverloadTickets {
		w.BurnoutRisk += p.OverloadRisk
		w.Messages = append(w.Messages, fmt.Sprintf(
			"Sobrecarga: mais de %d chamados abertos. Peça apoio para redistribuir a fila.", p.OverloadTickets))
	}
	if in.SLACompliance < p.MinCompliance {
		w.BurnoutRisk += p.LowComplianceRisk
		w.Messages = append(w.Messages, fmt.Sprintf(
			"Cumprimento de SLA em %s%%, abaixo de %s%%.", formatNumber(in.SLACompliance), formatNumber(p.MinCompliance)))
	}
	if in.ExceededTickets > p.ExceededTickets {
		w.BurnoutRisk += p.ExceededRisk
		w.Messages = append(w.Messages, fmt.Sprintf(
			"%s chamados com SLA excedido aumentam a pressão sobre a fila.", formatCount(in.ExceededTickets)))
	}
	if in.EstimatedHours > p.MonthlyHours {
		w.BurnoutRisk += p.OvertimeRisk
		w.Messages = append(w.Messages, fmt.Sprintf(
			"Estimativa de %s horas trabalhadas nos últimos 30 dias. Reserve tempo para pausas.", formatNumber(in.EstimatedHours)))
	}

	w.BurnoutRisk = clamp(w.BurnoutRisk, 0, 100)
	w.BalanceScore = clamp(100-w.BurnoutRisk, 0, 100)
	w.WorkloadLevel = workloadLevel(in.OpenTickets)
	w.BalanceStatus = balanceStatus(w.BalanceScore)
	return w
}

func workloadLevel(open int) domain.WorkloadLevel {
	switch {
	case open <= 5:
		return domain.WorkloadLow
	case open <= 10:
		return domain.WorkloadModerate
	case open <= 15:
		return domain.WorkloadHigh
	default:
		return domain.WorkloadCritical
	}
}

func balanceStatus(score float64) domain.BalanceStatus {
	switch {
	case score >= 80:
		return domain.BalanceExcellent
	case score >= 60:
		return domain.BalanceGood
	case score >= 40:
		return domain.BalanceAttention
	default:
		return domain.BalanceCritical
	}
}
