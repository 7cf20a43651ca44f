package domain

// TrendDirection describes where a series is heading.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// CompliancePrediction forecasts next-period SLA compliance.
//
// Confidence is a saturating function of the sample count. It is a
// heuristic and not a statistical confidence interval.
type CompliancePrediction struct {
	Predicted       float64        `json:"predicted"`
	WeightedAverage float64        `json:"weightedAverage"`
	Trend           float64        `json:"trend"`
	Confidence      float64        `json:"confidence"`
	Direction       TrendDirection `json:"direction"`
	Samples         int            `json:"samples"`
}

// ResolutionTimePrediction forecasts next-period average resolution time.
// Lower is better, so a falling series is reported as improving.
type ResolutionTimePrediction struct {
	PredictedMinutes float64        `json:"predictedMinutes"`
	Smoothed         float64        `json:"smoothed"`
	Trend            float64        `json:"trend"`
	Confidence       float64        `json:"confidence"`
	Direction        TrendDirection `json:"direction"`
	Samples          int            `json:"samples"`
}

// BreachRiskLevel classifies the share of open tickets close to breaching.
type BreachRiskLevel string

const (
	BreachRiskLow    BreachRiskLevel = "baixo"
	BreachRiskMedium BreachRiskLevel = "médio"
	BreachRiskHigh   BreachRiskLevel = "alto"
)

// BreachRiskAssessment flags open tickets whose SLA consumption passed a
// threshold. The level is a bounded heuristic over the at-risk fraction.
type BreachRiskAssessment struct {
	Threshold     float64         `json:"threshold"`
	OpenTickets   int             `json:"openTickets"`
	AtRiskCount   int             `json:"atRiskCount"`
	AtRiskPercent float64         `json:"atRiskPercent"`
	AtRiskTickets []string        `json:"atRiskTickets"`
	Level         BreachRiskLevel `json:"level"`
}

// SeasonalBucket is the average per-ticket compliance within one calendar
// month or weekday.
type SeasonalBucket struct {
	Key        string  `json:"key"`
	Samples    int     `json:"samples"`
	Compliance float64 `json:"compliance"`
}

// SeasonalityPattern groups historical compliance by month and weekday.
type SeasonalityPattern struct {
	Months       []SeasonalBucket `json:"months"`
	Weekdays     []SeasonalBucket `json:"weekdays"`
	BestMonth    string           `json:"bestMonth"`
	WorstMonth   string           `json:"worstMonth"`
	BestWeekday  string           `json:"bestWeekday"`
	WorstWeekday string           `json:"worstWeekday"`
}

// Predictions bundles trend outputs. Nil members mean "unavailable".
type Predictions struct {
	Compliance     *CompliancePrediction     `json:"compliance"`
	ResolutionTime *ResolutionTimePrediction `json:"resolutionTime"`
	BreachRisk     BreachRiskAssessment      `json:"breachRisk"`
	Seasonality    *SeasonalityPattern       `json:"seasonality"`
}
