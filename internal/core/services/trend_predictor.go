package services

import (
	"math"
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// TrendPredictor produces short-range forecasts from monthly buckets.
//
// Every score it emits is a bounded heuristic. Confidence grows with the
// number of samples and saturates at 100; it is not a calibrated
// probability or interval.
type TrendPredictor struct {
	policy domain.Policy
}

// NewTrendPredictor creates a predictor bound to a policy.
func NewTrendPredictor(policy domain.Policy) *TrendPredictor {
	return &TrendPredictor{policy: policy}
}

// PredictCompliance forecasts next-period compliance from a chronological
// series. Fewer than two buckets yields nil.
func (p *TrendPredictor) PredictCompliance(buckets []domain.MonthlyBucket) *domain.CompliancePrediction {
	n := len(buckets)
	if n < 2 {
		return nil
	}

	values := make([]float64, n)
	for i, b := range buckets {
		values[i] = b.SLACompliance
	}

	weighted := positionWeightedAverage(values)
	trend := values[n-1] - values[0]
	predicted := round2(clamp(weighted+trend/float64(n), 0, 100))

	return &domain.CompliancePrediction{
		Predicted:       predicted,
		WeightedAverage: round2(weighted),
		Trend:           round2(trend),
		Confidence:      p.confidence(n),
		Direction:       p.direction(trend),
		Samples:         n,
	}
}

// PredictResolutionTime forecasts next-period average resolution time with
// an exponential moving average plus the trend term. Buckets with no
// resolved ticket carry no resolution time and are skipped.
func (p *TrendPredictor) PredictResolutionTime(buckets []domain.MonthlyBucket) *domain.ResolutionTimePrediction {
	values := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		if b.AvgResolutionTimeMinutes > 0 {
			values = append(values, b.AvgResolutionTimeMinutes)
		}
	}
	n := len(values)
	if n < 2 {
		return nil
	}

	alpha := p.policy.Trend.EMASmoothing
	smoothed := values[0]
	for _, v := range values[1:] {
		smoothed = alpha*v + (1-alpha)*smoothed
	}
	trend := values[n-1] - values[0]

	// Relative change, so the stable band means the same for minutes and days.
	change := trend / values[0] * 100
	direction := domain.TrendStable
	switch {
	case change < -p.policy.Trend.StableBand:
		direction = domain.TrendImproving
	case change > p.policy.Trend.StableBand:
		direction = domain.TrendDeclining
	}

	return &domain.ResolutionTimePrediction{
		PredictedMinutes: round2(max(0, smoothed+trend/float64(n))),
		Smoothed:         round2(smoothed),
		Trend:            round2(trend),
		Confidence:       p.confidence(n),
		Direction:        direction,
		Samples:          n,
	}
}

// AssessBreachRisk flags unresolved tickets whose used/target ratio reached
// the threshold, and grades the at-risk share. A non-positive threshold
// falls back to the policy default.
func (p *TrendPredictor) AssessBreachRisk(details []domain.SLADetail, threshold float64) domain.BreachRiskAssessment {
	if threshold <= 0 {
		threshold = p.policy.Breach.AtRiskRatio
	}

	a := domain.BreachRiskAssessment{
		Threshold:     threshold,
		AtRiskTickets: []string{},
		Level:         domain.BreachRiskLow,
	}
	for _, d := range details {
		if d.Resolved {
			continue
		}
		a.OpenTickets++
		if d.IsExceeded || (d.MinutesDefined > 0 && d.UsageRatio() >= threshold) {
			a.AtRiskCount++
			a.AtRiskTickets = append(a.AtRiskTickets, d.TicketID)
		}
	}
	if a.OpenTickets == 0 {
		return a
	}

	fraction := float64(a.AtRiskCount) / float64(a.OpenTickets)
	a.AtRiskPercent = round2(fraction * 100)
	switch {
	case fraction >= p.policy.Breach.HighFraction:
		a.Level = domain.BreachRiskHigh
	case fraction >= p.policy.Breach.MediumFraction:
		a.Level = domain.BreachRiskMedium
	}
	return a
}

// DetectSeasonality averages per-ticket compliance (100 when the SLA held,
// 0 otherwise) by calendar month and weekday of the opened date. It needs a
// minimum number of dated tickets and returns nil below it.
func (p *TrendPredictor) DetectSeasonality(tickets []domain.TicketRecord, evaluator *SLAEvaluator) *domain.SeasonalityPattern {
	var months [12]seasonAccumulator
	var weekdays [7]seasonAccumulator
	dated := 0

	for _, t := range tickets {
		if t.OpenedAt == nil {
			continue
		}
		dated++
		score := 100.0
		if evaluator.EvaluateTicket(t).IsExceeded {
			score = 0
		}
		months[t.OpenedAt.Month()-time.January].add(score)
		weekdays[t.OpenedAt.Weekday()].add(score)
	}
	if dated < p.policy.Trend.SeasonalityMinSamples {
		return nil
	}

	pattern := &domain.SeasonalityPattern{}
	pattern.Months, pattern.BestMonth, pattern.WorstMonth = seasonBuckets(months[:], monthNames[:])
	pattern.Weekdays, pattern.BestWeekday, pattern.WorstWeekday = seasonBuckets(weekdays[:], weekdayNames[:])
	return pattern
}

type seasonAccumulator struct {
	sum   float64
	count int
}

func (a *seasonAccumulator) add(v float64) {
	a.sum += v
	a.count++
}

// seasonBuckets emits populated buckets in calendar order. Ties for best and
// worst go to the earliest bucket.
func seasonBuckets(acc []seasonAccumulator, names []string) ([]domain.SeasonalBucket, string, string) {
	buckets := []domain.SeasonalBucket{}
	best, worst := -1, -1
	for i, a := range acc {
		if a.count == 0 {
			continue
		}
		b := domain.SeasonalBucket{
			Key:        names[i],
			Samples:    a.count,
			Compliance: round2(a.sum / float64(a.count)),
		}
		if best < 0 || b.Compliance > buckets[best].Compliance {
			best = len(buckets)
		}
		if worst < 0 || b.Compliance < buckets[worst].Compliance {
			worst = len(buckets)
		}
		buckets = append(buckets, b)
	}
	if best < 0 {
		return buckets, "", ""
	}
	return buckets, buckets[best].Key, buckets[worst].Key
}

func (p *TrendPredictor) confidence(n int) float64 {
	return math.Min(100, float64(n)*p.policy.Trend.ConfidencePerSample)
}

func (p *TrendPredictor) direction(trend float64) domain.TrendDirection {
	switch {
	case trend > p.policy.Trend.StableBand:
		return domain.TrendImproving
	case trend < -p.policy.Trend.StableBand:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// positionWeightedAverage weights element i (1-based) by i/(n(n+1)/2).
func positionWeightedAverage(values []float64) float64 {
	n := float64(len(values))
	denominator := n * (n + 1) / 2
	var sum float64
	for i, v := range values {
		sum += v * float64(i+1) / denominator
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
