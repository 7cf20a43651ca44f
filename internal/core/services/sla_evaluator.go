package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// SLAEvaluator derives per-ticket SLA details and per-technician aggregates.
// It is stateless and safe for concurrent use.
type SLAEvaluator struct {
	policy domain.Policy
}

// NewSLAEvaluator creates an evaluator bound to a policy.
func NewSLAEvaluator(policy domain.Policy) *SLAEvaluator {
	return &SLAEvaluator{policy: policy}
}

// EvaluateTicket computes the SLA detail of one ticket. Missing or
// unparseable durations count as 0.
func (e *SLAEvaluator) EvaluateTicket(t domain.TicketRecord) domain.SLADetail {
	target := domain.ParseSLATargetMinutes(t.SLATarget)
	used := domain.ParseDurationMinutes(t.TimeToSolve)

	d := domain.SLADetail{
		TicketID:       t.ID,
		Technician:     t.Technician,
		Category:       t.Category,
		Priority:       t.Priority,
		Status:         t.Status,
		Resolved:       t.IsResolved(),
		MinutesDefined: target,
		MinutesUsed:    used,
		IsExceeded:     t.SLAExceeded || (target > 0 && used > target),
	}

	if target > 0 {
		d.PercentageUsed = clamp(100*used/target, 0, 100)
	}

	if d.IsExceeded {
		d.MinutesExceeded = max(0, used-target)
	} else {
		d.MinutesRemaining = max(0, target-used)
	}

	d.Phases = domain.PhaseBreakdown{
		Wait:       e.phase(t.WaitTime, target, e.policy.Phases.WaitRatio),
		Assignment: e.phase(t.AssignmentTime, target, e.policy.Phases.AssignmentRatio),
		Resolution: e.phase(t.ResolutionTime, target, e.policy.Phases.ResolutionRatio),
	}

	d.RiskTier = e.RiskTier(d.PercentageUsed, d.IsExceeded)
	d.RiskLevel = d.RiskTier.Level()

	if target > 0 {
		d.SafetyMargin = clamp(d.MinutesRemaining/target*100, 0, 100)
	}
	d.MarginStatus = e.MarginStatus(d.SafetyMargin)
	d.Hints = e.hints(d)

	return d
}

// EvaluateAll evaluates a batch, preserving order.
func (e *SLAEvaluator) EvaluateAll(tickets []domain.TicketRecord) []domain.SLADetail {
	details := make([]domain.SLADetail, 0, len(tickets))
	for _, t := range tickets {
		details = append(details, e.EvaluateTicket(t))
	}
	return details
}

// RiskTier maps consumption onto the five-step tier scale.
func (e *SLAEvaluator) RiskTier(percentageUsed float64, exceeded bool) domain.RiskTier {
	r := e.policy.Risk
	switch {
	case exceeded || percentageUsed >= r.Exceeded:
		return domain.RiskTierExceeded
	case percentageUsed >= r.VeryCritical:
		return domain.RiskTierVeryCritical
	case percentageUsed >= r.Critical:
		return domain.RiskTierCritical
	case percentageUsed >= r.Attention:
		return domain.RiskTierAttention
	default:
		return domain.RiskTierLow
	}
}

// MarginStatus buckets the safety margin.
func (e *SLAEvaluator) MarginStatus(margin float64) domain.MarginStatus {
	m := e.policy.Margin
	switch {
	case margin >= m.Excellent:
		return domain.MarginExcellent
	case margin >= m.Good:
		return domain.MarginGood
	case margin >= m.Low:
		return domain.MarginLow
	default:
		return domain.MarginCritical
	}
}

func (e *SLAEvaluator) phase(raw string, target, idealRatio float64) domain.PhaseDetail {
	minutes := domain.ParseDurationMinutes(raw)
	p := domain.PhaseDetail{Minutes: minutes}
	if target <= 0 || idealRatio <= 0 {
		return p
	}

	ideal := target * idealRatio
	p.Percentage = clamp(minutes/target*100, 0, 100)
	p.Efficiency = clamp(100-(minutes-ideal)/ideal*100, 0, 100)
	return p
}

func (e *SLAEvaluator) hints(d domain.SLADetail) []domain.Recommendation {
	hints := []domain.Recommendation{}

	switch {
	case d.IsExceeded:
		hints = append(hints, domain.Recommendation{
			Type:     domain.RecommendationCritical,
			Priority: domain.PriorityHighRec,
			Title:    "SLA excedido",
			Message:  fmt.Sprintf("O chamado %s ultrapassou o prazo em %s minutos.", d.TicketID, formatNumber(d.MinutesExceeded)),
			Category: d.Category,
			Metric:   &domain.Metric{Name: "minutesExceeded", Value: d.MinutesExceeded},
		})
	case d.RiskTier == domain.RiskTierVeryCritical && !d.Resolved:
		hints = append(hints, domain.Recommendation{
			Type:     domain.RecommendationWarning,
			Priority: domain.PriorityHighRec,
			Title:    "SLA muito crítico",
			Message:  fmt.Sprintf("Restam %s minutos para o prazo do chamado %s.", formatNumber(d.MinutesRemaining), d.TicketID),
			Category: d.Category,
			Metric:   &domain.Metric{Name: "percentageUsed", Value: d.PercentageUsed},
		})
	}

	if d.MinutesDefined > 0 {
		phases := []struct {
			name   string
			detail domain.PhaseDetail
		}{
			{"espera", d.Phases.Wait},
			{"atribuição", d.Phases.Assignment},
			{"resolução", d.Phases.Resolution},
		}
		for _, ph := range phases {
			if ph.detail.Minutes <= 0 || ph.detail.Efficiency >= e.policy.Phases.SlowEfficiency {
				continue
			}
			hints = append(hints, domain.Recommendation{
				Type:     domain.RecommendationInfo,
				Priority: domain.PriorityMediumRec,
				Title:    "Fase de " + ph.name + " lenta",
				Message: fmt.Sprintf("A fase de %s consumiu %s%% do prazo (eficiência %s%%).",
					ph.name, formatNumber(ph.detail.Percentage), formatNumber(ph.detail.Efficiency)),
				Category: d.Category,
				Metric:   &domain.Metric{Name: "efficiency", Value: ph.detail.Efficiency},
			})
		}
	}

	if d.Resolved && !d.IsExceeded && d.MinutesDefined > 0 && d.MarginStatus == domain.MarginExcellent {
		hints = append(hints, domain.Recommendation{
			Type:     domain.RecommendationSuccess,
			Priority: domain.PriorityLowRec,
			Title:    "Margem excelente",
			Message:  fmt.Sprintf("O chamado %s foi resolvido com %s%% do prazo de folga.", d.TicketID, formatNumber(d.SafetyMargin)),
			Category: d.Category,
			Metric:   &domain.Metric{Name: "safetyMargin", Value: d.SafetyMargin},
		})
	}

	return hints
}

// Aggregate folds a ticket set into totals, category breakdowns and monthly
// buckets. Tickets without a parseable opened date are counted in totals
// but skipped by the monthly buckets and the trailing window.
func (e *SLAEvaluator) Aggregate(tickets []domain.TicketRecord, asOf time.Time) domain.TechnicianAggregate {
	agg := domain.TechnicianAggregate{
		Categories: []domain.CategoryAggregate{},
		Monthly:    []domain.MonthlyBucket{},
	}

	categories := make(map[string]*categoryAccumulator)
	months := make(map[string]*monthAccumulator)

	var resolutionSum float64
	var resolutionCount int
	var recentMinutes float64
	windowStart := asOf.AddDate(0, 0, -e.policy.Windows.Month)

	for _, t := range tickets {
		d := e.EvaluateTicket(t)

		agg.Total++
		if d.Resolved {
			agg.Resolved++
			if d.MinutesUsed > 0 {
				resolutionSum += d.MinutesUsed
				resolutionCount++
			}
			if !d.IsExceeded {
				agg.ResolvedWithinSLA++
			}
		} else {
			agg.Open++
			if t.Priority.IsHighOrCritical() {
				agg.HighPriorityOpen++
			}
		}
		if d.IsExceeded {
			agg.SLAExceeded++
		} else {
			agg.SLAMet++
		}

		name := t.Category
		if name == "" {
			name = domain.UncategorizedCategory
		}
		cat, ok := categories[name]
		if !ok {
			cat = &categoryAccumulator{category: domain.CategoryAggregate{Category: name}}
			categories[name] = cat
		}
		cat.add(d)

		if t.OpenedAt == nil {
			continue
		}

		key := t.OpenedAt.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &monthAccumulator{bucket: domain.MonthlyBucket{Month: key}}
			months[key] = m
		}
		m.add(d)

		if !asOf.IsZero() && !t.OpenedAt.Before(windowStart) && !t.OpenedAt.After(asOf) {
			recentMinutes += d.MinutesUsed
		}
	}

	agg.SLACompliance = domain.Compliance(agg.SLAMet, agg.Total)
	if resolutionCount > 0 {
		agg.AvgResolutionTimeMinutes = resolutionSum / float64(resolutionCount)
	}
	agg.EstimatedHours = recentMinutes / 60

	for _, cat := range categories {
		agg.Categories = append(agg.Categories, cat.finish())
	}
	sort.Slice(agg.Categories, func(i, j int) bool {
		return agg.Categories[i].Category < agg.Categories[j].Category
	})

	for _, m := range months {
		agg.Monthly = append(agg.Monthly, m.finish())
	}
	sort.Slice(agg.Monthly, func(i, j int) bool {
		return agg.Monthly[i].Month < agg.Monthly[j].Month
	})

	return agg
}

type categoryAccumulator struct {
	category        domain.CategoryAggregate
	resolutionSum   float64
	resolutionCount int
}

func (c *categoryAccumulator) add(d domain.SLADetail) {
	c.category.Total++
	if d.Resolved {
		c.category.Resolved++
		if d.MinutesUsed > 0 {
			c.resolutionSum += d.MinutesUsed
			c.resolutionCount++
		}
	}
	if d.IsExceeded {
		c.category.SLAExceeded++
	} else {
		c.category.SLAMet++
	}
}

func (c *categoryAccumulator) finish() domain.CategoryAggregate {
	cat := c.category
	cat.SLACompliance = domain.Compliance(cat.SLAMet, cat.Total)
	if c.resolutionCount > 0 {
		cat.AvgResolutionTimeMinutes = c.resolutionSum / float64(c.resolutionCount)
	}
	return cat
}

type monthAccumulator struct {
	bucket          domain.MonthlyBucket
	resolutionSum   float64
	resolutionCount int
}

func (m *monthAccumulator) add(d domain.SLADetail) {
	m.bucket.Opened++
	if d.Resolved {
		m.bucket.Closed++
		if d.MinutesUsed > 0 {
			m.resolutionSum += d.MinutesUsed
			m.resolutionCount++
		}
	}
	if d.IsExceeded {
		m.bucket.SLAExceeded++
	} else {
		m.bucket.SLAMet++
	}
}

func (m *monthAccumulator) finish() domain.MonthlyBucket {
	b := m.bucket
	b.SLACompliance = domain.Compliance(b.SLAMet, b.Opened)
	if m.resolutionCount > 0 {
		b.AvgResolutionTimeMinutes = m.resolutionSum / float64(m.resolutionCount)
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// formatNumber renders a value the way Brazilian users read it: "1.234,5",
// and "75" rather than "75,0".
func formatNumber(v float64) string {
	return strings.TrimSuffix(humanize.FormatFloat("#.###,#", v), ",0")
}

func formatCount(n int) string {
	return formatNumber(float64(n))
}
