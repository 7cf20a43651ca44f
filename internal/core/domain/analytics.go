package domain

// RiskTier is the five-step SLA consumption scale used for per-ticket display.
type RiskTier string

const (
	RiskTierLow          RiskTier = "low"
	RiskTierAttention    RiskTier = "attention"
	RiskTierCritical     RiskTier = "critical"
	RiskTierVeryCritical RiskTier = "very_critical"
	RiskTierExceeded     RiskTier = "exceeded"
)

// RiskLevel is the coarse four-step scale carried by SLADetail.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Level collapses a tier onto the four-step scale.
func (t RiskTier) Level() RiskLevel {
	switch t {
	case RiskTierLow:
		return RiskLevelLow
	case RiskTierAttention:
		return RiskLevelMedium
	case RiskTierCritical:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// MarginStatus buckets the remaining share of the SLA target.
type MarginStatus string

const (
	MarginExcellent MarginStatus = "excellent"
	MarginGood      MarginStatus = "good"
	MarginLow       MarginStatus = "low"
	MarginCritical  MarginStatus = "critical"
)

// PhaseDetail is the time spent in one ticket phase against its ideal share
// of the SLA target.
type PhaseDetail struct {
	Minutes    float64 `json:"minutes"`
	Percentage float64 `json:"percentage"`
	Efficiency float64 `json:"efficiency"`
}

// PhaseBreakdown groups the three tracked phases.
type PhaseBreakdown struct {
	Wait       PhaseDetail `json:"wait"`
	Assignment PhaseDetail `json:"assignment"`
	Resolution PhaseDetail `json:"resolution"`
}

// SLADetail is the per-ticket derived SLA record.
type SLADetail struct {
	TicketID         string           `json:"ticketId"`
	Technician       string           `json:"technician"`
	Category         string           `json:"category"`
	Priority         TicketPriority   `json:"priority"`
	Status           TicketStatus     `json:"status"`
	Resolved         bool             `json:"resolved"`
	MinutesDefined   float64          `json:"minutesDefined"`
	MinutesUsed      float64          `json:"minutesUsed"`
	MinutesRemaining float64          `json:"minutesRemaining"`
	MinutesExceeded  float64          `json:"minutesExceeded"`
	PercentageUsed   float64          `json:"percentageUsed"`
	IsExceeded       bool             `json:"isExceeded"`
	Phases           PhaseBreakdown   `json:"phases"`
	RiskTier         RiskTier         `json:"riskTier"`
	RiskLevel        RiskLevel        `json:"riskLevel"`
	SafetyMargin     float64          `json:"safetyMargin"`
	MarginStatus     MarginStatus     `json:"marginStatus"`
	Hints            []Recommendation `json:"hints"`
}

// UsageRatio is used/target, or 0 when no target is defined.
func (d SLADetail) UsageRatio() float64 {
	if d.MinutesDefined <= 0 {
		return 0
	}
	return d.MinutesUsed / d.MinutesDefined
}

// CategoryAggregate summarizes one category for a technician.
type CategoryAggregate struct {
	Category                 string  `json:"category"`
	Total                    int     `json:"total"`
	Resolved                 int     `json:"resolved"`
	SLAMet                   int     `json:"slaMet"`
	SLAExceeded              int     `json:"slaExceeded"`
	SLACompliance            float64 `json:"slaCompliance"`
	AvgResolutionTimeMinutes float64 `json:"avgResolutionTimeMinutes"`
}

// MonthlyBucket aggregates tickets by the calendar month they were opened in.
type MonthlyBucket struct {
	Month                    string  `json:"month"`
	Opened                   int     `json:"opened"`
	Closed                   int     `json:"closed"`
	SLAMet                   int     `json:"slaMet"`
	SLAExceeded              int     `json:"slaExceeded"`
	SLACompliance            float64 `json:"slaCompliance"`
	AvgResolutionTimeMinutes float64 `json:"avgResolutionTimeMinutes"`
}

// TechnicianAggregate holds the derived totals for one technician, or for a
// whole team when Technician is empty.
type TechnicianAggregate struct {
	Technician               string              `json:"technician"`
	Total                    int                 `json:"total"`
	Resolved                 int                 `json:"resolved"`
	Open                     int                 `json:"open"`
	SLAMet                   int                 `json:"slaMet"`
	SLAExceeded              int                 `json:"slaExceeded"`
	ResolvedWithinSLA        int                 `json:"resolvedWithinSla"`
	SLACompliance            float64             `json:"slaCompliance"`
	AvgResolutionTimeMinutes float64             `json:"avgResolutionTimeMinutes"`
	HighPriorityOpen         int                 `json:"highPriorityOpen"`
	EstimatedHours           float64             `json:"estimatedHours"`
	Categories               []CategoryAggregate `json:"categories"`
	Monthly                  []MonthlyBucket     `json:"monthly"`
}

// Compliance returns 100*met/total, or 0 for an empty set.
func Compliance(met, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(met) / float64(total)
}
