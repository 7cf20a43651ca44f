package domain

import (
	"errors"
	"fmt"
)

// Policy holds every tunable threshold of the analytics engine. The zero
// value is not usable; start from DefaultPolicy and override.
type Policy struct {
	Risk            RiskPolicy           `yaml:"risk"`
	Margin          MarginPolicy         `yaml:"margin"`
	Phases          PhasePolicy          `yaml:"phases"`
	Breach          BreachPolicy         `yaml:"breach"`
	Trend           TrendPolicy          `yaml:"trend"`
	Recommendations RecommendationPolicy `yaml:"recommendations"`
	Wellness        WellnessPolicy       `yaml:"wellness"`
	Windows         WindowPolicy         `yaml:"windows"`
}

// RiskPolicy sets the percentage-used boundaries of the risk tiers.
type RiskPolicy struct {
	Attention    float64 `yaml:"attention"`
	Critical     float64 `yaml:"critical"`
	VeryCritical float64 `yaml:"very_critical"`
	Exceeded     float64 `yaml:"exceeded"`
}

// MarginPolicy sets the remaining-time boundaries of the margin status.
type MarginPolicy struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Low       float64 `yaml:"low"`
}

// PhasePolicy sets the ideal share of the SLA target each phase should take.
type PhasePolicy struct {
	WaitRatio       float64 `yaml:"wait_ratio"`
	AssignmentRatio float64 `yaml:"assignment_ratio"`
	ResolutionRatio float64 `yaml:"resolution_ratio"`
	SlowEfficiency  float64 `yaml:"slow_efficiency"`
}

// BreachPolicy controls the open-ticket breach assessment.
type BreachPolicy struct {
	AtRiskRatio    float64 `yaml:"at_risk_ratio"`
	HighFraction   float64 `yaml:"high_fraction"`
	MediumFraction float64 `yaml:"medium_fraction"`
}

// TrendPolicy controls the forecasting heuristics.
type TrendPolicy struct {
	EMASmoothing          float64 `yaml:"ema_smoothing"`
	ConfidencePerSample   float64 `yaml:"confidence_per_sample"`
	StableBand            float64 `yaml:"stable_band"`
	SeasonalityMinSamples int     `yaml:"seasonality_min_samples"`
}

// RecommendationPolicy holds the gaps and ratios the rule engine compares against.
type RecommendationPolicy struct {
	ComplianceGap         float64 `yaml:"compliance_gap"`
	ResolutionTimeGap     float64 `yaml:"resolution_time_gap"`
	WeakCategoryMinimum   int     `yaml:"weak_category_minimum"`
	WeakCategoryRate      float64 `yaml:"weak_category_rate"`
	StrongCategoryMinimum int     `yaml:"strong_category_minimum"`
	StrongCategoryRate    float64 `yaml:"strong_category_rate"`
	TrendWindow           int     `yaml:"trend_window"`
	TrendMove             float64 `yaml:"trend_move"`
	HighPriorityShare     float64 `yaml:"high_priority_share"`
	AtRiskRatio           float64 `yaml:"at_risk_ratio"`
	HighVolumeRatio       float64 `yaml:"high_volume_ratio"`
	LowQualityRatio       float64 `yaml:"low_quality_ratio"`
	LowVolumeRatio        float64 `yaml:"low_volume_ratio"`
	HighQualityRatio      float64 `yaml:"high_quality_ratio"`
	TopPercentile         float64 `yaml:"top_percentile"`
	BottomPercentile      float64 `yaml:"bottom_percentile"`
}

// WellnessPolicy holds the burnout risk contributions.
type WellnessPolicy struct {
	OpenTickets       int     `yaml:"open_tickets"`
	OpenTicketsRisk   float64 `yaml:"open_tickets_risk"`
	OverloadTickets   int     `yaml:"overload_tickets"`
	OverloadRisk      float64 `yaml:"overload_risk"`
	MinCompliance     float64 `yaml:"min_compliance"`
	LowComplianceRisk float64 `yaml:"low_compliance_risk"`
	ExceededTickets   int     `yaml:"exceeded_tickets"`
	ExceededRisk      float64 `yaml:"exceeded_risk"`
	MonthlyHours      float64 `yaml:"monthly_hours"`
	OvertimeRisk      float64 `yaml:"overtime_risk"`
}

// WindowPolicy sets the look-back windows, in days, used by badges and
// estimated hours.
type WindowPolicy struct {
	Week    int `yaml:"week"`
	Month   int `yaml:"month"`
	Quarter int `yaml:"quarter"`
}

// DefaultPolicy returns the thresholds the engine ships with.
func DefaultPolicy() Policy {
	return Policy{
		Risk: RiskPolicy{
			Attention:    60,
			Critical:     75,
			VeryCritical: 90,
			Exceeded:     95,
		},
		Margin: MarginPolicy{
			Excellent: 25,
			Good:      10,
			Low:       5,
		},
		Phases: PhasePolicy{
			WaitRatio:       0.20,
			AssignmentRatio: 0.10,
			ResolutionRatio: 0.70,
			SlowEfficiency:  50,
		},
		Breach: BreachPolicy{
			AtRiskRatio:    0.75,
			HighFraction:   0.30,
			MediumFraction: 0.15,
		},
		Trend: TrendPolicy{
			EMASmoothing:          0.3,
			ConfidencePerSample:   15,
			StableBand:            1,
			SeasonalityMinSamples: 6,
		},
		Recommendations: RecommendationPolicy{
			ComplianceGap:         5,
			ResolutionTimeGap:     0.10,
			WeakCategoryMinimum:   3,
			WeakCategoryRate:      70,
			StrongCategoryMinimum: 5,
			StrongCategoryRate:    95,
			TrendWindow:           3,
			TrendMove:             5,
			HighPriorityShare:     0.30,
			AtRiskRatio:           0.75,
			HighVolumeRatio:       1.2,
			LowQualityRatio:       0.9,
			LowVolumeRatio:        0.8,
			HighQualityRatio:      1.1,
			TopPercentile:         90,
			BottomPercentile:      25,
		},
		Wellness: WellnessPolicy{
			OpenTickets:       15,
			OpenTicketsRisk:   30,
			OverloadTickets:   20,
			OverloadRisk:      20,
			MinCompliance:     75,
			LowComplianceRisk: 25,
			ExceededTickets:   5,
			ExceededRisk:      15,
			MonthlyHours:      160,
			OvertimeRisk:      10,
		},
		Windows: WindowPolicy{
			Week:    7,
			Month:   30,
			Quarter: 90,
		},
	}
}

// ErrInvalidPolicy wraps every Validate failure.
var ErrInvalidPolicy = errors.New("invalid analytics policy")

// Validate checks that thresholds are ordered and ratios are in range.
func (p Policy) Validate() error {
	var errs []error

	r := p.Risk
	if !(0 < r.Attention && r.Attention <= r.Critical && r.Critical <= r.VeryCritical && r.VeryCritical <= r.Exceeded && r.Exceeded <= 100) {
		errs = append(errs, errors.New("risk tiers must be ascending within (0, 100]"))
	}
	m := p.Margin
	if !(0 <= m.Low && m.Low <= m.Good && m.Good <= m.Excellent && m.Excellent <= 100) {
		errs = append(errs, errors.New("margin tiers must be ascending within [0, 100]"))
	}
	for name, ratio := range map[string]float64{
		"phases.wait_ratio":       p.Phases.WaitRatio,
		"phases.assignment_ratio": p.Phases.AssignmentRatio,
		"phases.resolution_ratio": p.Phases.ResolutionRatio,
		"breach.at_risk_ratio":    p.Breach.AtRiskRatio,
		"trend.ema_smoothing":     p.Trend.EMASmoothing,
	} {
		if ratio <= 0 || ratio > 1 {
			errs = append(errs, fmt.Errorf("%s must be within (0, 1]", name))
		}
	}
	if p.Breach.MediumFraction > p.Breach.HighFraction {
		errs = append(errs, errors.New("breach.medium_fraction must not exceed breach.high_fraction"))
	}
	if p.Trend.SeasonalityMinSamples < 1 {
		errs = append(errs, errors.New("trend.seasonality_min_samples must be positive"))
	}
	if p.Recommendations.TrendWindow < 2 {
		errs = append(errs, errors.New("recommendations.trend_window must be at least 2"))
	}
	if p.Windows.Week <= 0 || p.Windows.Month <= 0 || p.Windows.Quarter <= 0 {
		errs = append(errs, errors.New("windows must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, errors.Join(errs...))
	}
	return nil
}
