package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// RecommendationInput is what the rule engine compares.
type RecommendationInput struct {
	Technician      domain.TechnicianAggregate
	Team            domain.TechnicianAggregate
	TechnicianCount int
	OpenDetails     []domain.SLADetail
	PeerCompliance  []float64
}

// RecommendationEngine turns aggregates into prioritized advice.
type RecommendationEngine struct {
	policy domain.Policy
}

// NewRecommendationEngine creates an engine bound to a policy.
func NewRecommendationEngine(policy domain.Policy) *RecommendationEngine {
	return &RecommendationEngine{policy: policy}
}

// Generate runs every rule, drops repeated titles (first wins) and orders the
// result by priority and then severity. It never returns an empty list.
func (e *RecommendationEngine) Generate(in RecommendationInput) []domain.Recommendation {
	var recs []domain.Recommendation
	recs = append(recs, e.teamComparison(in)...)
	recs = append(recs, e.categories(in.Technician)...)
	recs = append(recs, e.trend(in.Technician)...)
	recs = append(recs, e.priorityConcentration(in.Technician)...)
	recs = append(recs, e.atRisk(in.OpenDetails)...)
	recs = append(recs, e.workloadBalance(in)...)
	recs = append(recs, e.ranking(in)...)

	seen := make(map[string]bool, len(recs))
	out := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		if seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return out[i].Type.Rank() < out[j].Type.Rank()
	})

	if len(out) == 0 {
		out = append(out, domain.Recommendation{
			Type:     domain.RecommendationInfo,
			Priority: domain.PriorityLowRec,
			Title:    "Desempenho estável",
			Message:  "Nenhum ponto de atenção identificado no período analisado.",
		})
	}
	return out
}

func (e *RecommendationEngine) teamComparison(in RecommendationInput) []domain.Recommendation {
	tech, team := in.Technician, in.Team
	if tech.Total == 0 || team.Total == 0 {
		return nil
	}
	p := e.policy.Recommendations

	var recs []domain.Recommendation
	gap := tech.SLACompliance - team.SLACompliance
	switch {
	case gap < -p.ComplianceGap:
		recs = append(recs, domain.Recommendation{
			Type:     domain.RecommendationWarning,
			Priority: domain.PriorityHighRec,
			Title:    "Cumprimento de SLA abaixo da equipe",
			Message: fmt.Sprintf("Seu cumprimento de SLA está %s p.p. abaixo da média da equipe (%s%%).",
				formatNumber(-gap), formatNumber(team.SLACompliance)),
			Metric: &domain.Metric{Name: "complianceGap", Value: gap},
		})
	case gap > p.ComplianceGap:
		recs = append(recs, domain.Recommendation{
			Type:     domain.RecommendationSuccess,
			Priority: domain.PriorityLowRec,
			Title:    "Cumprimento de SLA acima da equipe",
			Message:  fmt.Sprintf("Seu cumprimento de SLA está %s p.p. acima da média da equipe.", formatNumber(gap)),
			Metric:   &domain.Metric{Name: "complianceGap", Value: gap},
		})
	}

	if tech.AvgResolutionTimeMinutes > 0 && team.AvgResolutionTimeMinutes > 0 {
		diff := (tech.AvgResolutionTimeMinutes - team.AvgResolutionTimeMinutes) / team.AvgResolutionTimeMinutes
		switch {
		case diff > p.ResolutionTimeGap:
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecommendationWarning,
				Priority: domain.PriorityMediumRec,
				Title:    "Tempo de solução acima da média",
				Message: fmt.Sprintf("Seu tempo médio de solução é %s%% maior que o da equipe.",
					formatNumber(diff*100)),
				Metric: &domain.Metric{Name: "resolutionTimeGap", Value: diff * 100},
			})
		case diff < -p.ResolutionTimeGap:
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecommendationSuccess,
				Priority: domain.PriorityLowRec,
				Title:    "Tempo de solução abaixo da média",
				Message: fmt.Sprintf("Seu tempo médio de solução é %s%% menor que o da equipe.",
					formatNumber(-diff*100)),
				Metric: &domain.Metric{Name: "resolutionTimeGap", Value: diff * 100},
			})
		}
	}
	return recs
}

func (e *RecommendationEngine) categories(tech domain.TechnicianAggregate) []domain.Recommendation {
	p := e.policy.Recommendations
	var recs []domain.Recommendation
	for _, c := range tech.Categories {
		switch {
		case c.Total >= p.WeakCategoryMinimum && c.SLACompliance < p.WeakCategoryRate:
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecommendationWarning,
				Priority: domain.PriorityMediumRec,
				Title:    "Dificuldade em " + c.Category,
				Message: fmt.Sprintf("Apenas %s%% dos %d chamados de %s cumpriram o SLA. Considere buscar apoio ou treinamento.",
					formatNumber(c.SLACompliance), c.Total, c.Category),
				Category: c.Category,
				Metric:   &domain.Metric{Name: "categoryCompliance", Value: c.SLACompliance},
			})
		case c.Total >= p.StrongCategoryMinimum && c.SLACompliance >= p.StrongCategoryRate:
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecommendationSuccess,
				Priority: domain.PriorityLowRec,
				Title:    "Especialista em " + c.Category,
				Message: fmt.Sprintf("%s%% de cumprimento em %d chamados de %s. Compartilhe suas práticas com a equipe.",
					formatNumber(c.SLACompliance), c.Total, c.Category),
				Category: c.Category,
				Metric:   &domain.Metric{Name: "categoryCompliance", Value: c.SLACompliance},
			})
		}
	}
	return recs
}

func (e *RecommendationEngine) trend(tech domain.TechnicianAggregate) []domain.Recommendation {
	p := e.policy.Recommendations
	if len(tech.Monthly) < 2 {
		return nil
	}
	window := tech.Monthly
	if len(window) > p.TrendWindow {
		window = window[len(window)-p.TrendWindow:]
	}
	move := window[len(window)-1].SLACompliance - window[0].SLACompliance

	switch {
	case move > p.TrendMove:
		return []domain.Recommendation{{
			Type:     domain.RecommendationSuccess,
			Priority: domain.PriorityMediumRec,
			Title:    "Tendência de melhora",
			Message:  fmt.Sprintf("O cumprimento de SLA subiu %s p.p. nos últimos %d meses.", formatNumber(move), len(window)),
			Metric:   &domain.Metric{Name: "complianceTrend", Value: move},
		}}
	case move < -p.TrendMove:
		return []domain.Recommendation{{
			Type:     domain.RecommendationWarning,
			Priority: domain.PriorityHighRec,
			Title:    "Tendência de queda",
			Message:  fmt.Sprintf("O cumprimento de SLA caiu %s p.p. nos últimos %d meses.", formatNumber(-move), len(window)),
			Metric:   &domain.Metric{Name: "complianceTrend", Value: move},
		}}
	}
	return nil
}

func (e *RecommendationEngine) priorityConcentration(tech domain.TechnicianAggregate) []domain.Recommendation {
	if tech.Open == 0 {
		return nil
	}
	share := float64(tech.HighPriorityOpen) / float64(tech.Open)
	if share <= e.policy.Recommendations.HighPriorityShare {
		return nil
	}
	return []domain.Recommendation{{
		Type:     domain.RecommendationWarning,
		Priority: domain.PriorityHighRec,
		Title:    "Concentração de chamados prioritários",
		Message: fmt.Sprintf("%d de %d chamados abertos são de prioridade alta ou crítica. Avalie redistribuir a fila.",
			tech.HighPriorityOpen, tech.Open),
		Metric: &domain.Metric{Name: "highPriorityShare", Value: share * 100},
	}}
}

func (e *RecommendationEngine) atRisk(open []domain.SLADetail) []domain.Recommendation {
	n := 0
	for _, d := range open {
		if d.Resolved {
			continue
		}
		if d.IsExceeded || (d.MinutesDefined > 0 && d.UsageRatio() >= e.policy.Recommendations.AtRiskRatio) {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []domain.Recommendation{{
		Type:     domain.RecommendationCritical,
		Priority: domain.PriorityHighRec,
		Title:    "Chamados em risco de SLA",
		Message: fmt.Sprintf("%s %s com ao menos %s%% do prazo consumido. Priorize o atendimento.",
			formatCount(n), pluralize(n, "chamado aberto", "chamados abertos"),
			formatNumber(e.policy.Recommendations.AtRiskRatio*100)),
		Metric: &domain.Metric{Name: "atRiskTickets", Value: float64(n)},
	}}
}

func (e *RecommendationEngine) workloadBalance(in RecommendationInput) []domain.Recommendation {
	if in.TechnicianCount < 2 || in.Team.Total == 0 || in.Team.SLACompliance == 0 {
		return nil
	}
	p := e.policy.Recommendations
	teamAvgVolume := float64(in.Team.Total) / float64(in.TechnicianCount)
	volume := float64(in.Technician.Total) / teamAvgVolume
	quality := in.Technician.SLACompliance / in.Team.SLACompliance

	switch {
	case volume > p.HighVolumeRatio && quality < p.LowQualityRatio:
		return []domain.Recommendation{{
			Type:     domain.RecommendationWarning,
			Priority: domain.PriorityMediumRec,
			Title:    "Volume alto afetando a qualidade",
			Message: fmt.Sprintf("Você atende %s vezes a média da equipe, mas com qualidade abaixo dela. Considere redistribuir chamados.",
				formatNumber(volume)),
			Metric: &domain.Metric{Name: "volumeRatio", Value: volume},
		}}
	case volume < p.LowVolumeRatio && quality > p.HighQualityRatio:
		return []domain.Recommendation{{
			Type:     domain.RecommendationInfo,
			Priority: domain.PriorityLowRec,
			Title:    "Capacidade para mais chamados",
			Message:  "Sua qualidade está acima da equipe com volume abaixo da média. Você pode assumir mais chamados.",
			Metric:   &domain.Metric{Name: "volumeRatio", Value: volume},
		}}
	}
	return nil
}

func (e *RecommendationEngine) ranking(in RecommendationInput) []domain.Recommendation {
	if len(in.PeerCompliance) < 3 {
		return nil
	}
	p := e.policy.Recommendations
	pct := PercentileRank(in.Technician.SLACompliance, in.PeerCompliance)

	switch {
	case pct >= p.TopPercentile:
		return []domain.Recommendation{{
			Type:     domain.RecommendationSuccess,
			Priority: domain.PriorityLowRec,
			Title:    "Destaque da equipe",
			Message:  fmt.Sprintf("Seu cumprimento de SLA está no percentil %s da equipe.", formatNumber(pct)),
			Metric:   &domain.Metric{Name: "percentile", Value: pct},
		}}
	case pct <= p.BottomPercentile:
		return []domain.Recommendation{{
			Type:     domain.RecommendationInfo,
			Priority: domain.PriorityMediumRec,
			Title:    "Oportunidade de crescimento",
			Message:  fmt.Sprintf("Seu cumprimento de SLA está no percentil %s da equipe. Converse com seu líder sobre um plano de desenvolvimento.", formatNumber(pct)),
			Metric:   &domain.Metric{Name: "percentile", Value: pct},
		}}
	}
	return nil
}

// PercentileRank is the share of the other values strictly below value, in
// [0, 100]. values is expected to include value itself. With one value or
// none the rank is 100.
func PercentileRank(value float64, values []float64) float64 {
	if len(values) < 2 {
		return 100
	}
	below := 0
	for _, v := range values {
		if v < value {
			below++
		}
	}
	return math.Min(100, float64(below)/float64(len(values)-1)*100)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
