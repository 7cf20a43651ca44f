package domain

// RecommendationType is the severity of a recommendation.
type RecommendationType string

const (
	RecommendationCritical RecommendationType = "critical"
	RecommendationWarning  RecommendationType = "warning"
	RecommendationInfo     RecommendationType = "info"
	RecommendationSuccess  RecommendationType = "success"
)

// Rank orders types from most to least severe.
func (t RecommendationType) Rank() int {
	switch t {
	case RecommendationCritical:
		return 0
	case RecommendationWarning:
		return 1
	case RecommendationInfo:
		return 2
	default:
		return 3
	}
}

// RecommendationPriority is the urgency of a recommendation.
type RecommendationPriority string

const (
	PriorityHighRec   RecommendationPriority = "alta"
	PriorityMediumRec RecommendationPriority = "média"
	PriorityLowRec    RecommendationPriority = "baixa"
)

// Rank orders priorities from most to least urgent.
func (p RecommendationPriority) Rank() int {
	switch p {
	case PriorityHighRec:
		return 0
	case PriorityMediumRec:
		return 1
	default:
		return 2
	}
}

// Metric is an optional numeric payload attached to a recommendation.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Recommendation is one rule-based piece of advice.
type Recommendation struct {
	Type     RecommendationType     `json:"type"`
	Priority RecommendationPriority `json:"priority"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Category string                 `json:"category,omitempty"`
	Metric   *Metric                `json:"metric,omitempty"`
}
