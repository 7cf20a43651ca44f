package domain

import "time"

// Report is the per-technician bundle handed to the presentation layer.
type Report struct {
	ID              string              `json:"id"`
	Technician      string              `json:"technician"`
	AsOf            time.Time           `json:"asOf"`
	GeneratedAt     time.Time           `json:"generatedAt"`
	Filter          *TicketFilter       `json:"filter,omitempty"`
	Aggregate       TechnicianAggregate `json:"aggregate"`
	SLADetails      []SLADetail         `json:"slaDetails"`
	Predictions     Predictions         `json:"predictions"`
	Gamification    GamificationResult  `json:"gamification"`
	Recommendations []Recommendation    `json:"recommendations"`
	Wellness        Wellness            `json:"wellness"`
	GoalProgress    *GoalProgress       `json:"goalProgress,omitempty"`
}

// TechnicianSummary is one row of the team overview.
type TechnicianSummary struct {
	Technician    string   `json:"technician"`
	Total         int      `json:"total"`
	Resolved      int      `json:"resolved"`
	Open          int      `json:"open"`
	SLACompliance float64  `json:"slaCompliance"`
	TotalXP       int      `json:"totalXP"`
	Level         int      `json:"level"`
	LevelName     string   `json:"levelName"`
	BurnoutRisk   float64  `json:"burnoutRisk"`
	Percentile    float64  `json:"percentile"`
	NewBadges     []string `json:"newBadges"`
	Rank          int      `json:"rank"`
}

// TeamReport aggregates every technician in the ticket set.
type TeamReport struct {
	ID          string              `json:"id"`
	AsOf        time.Time           `json:"asOf"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Filter      *TicketFilter       `json:"filter,omitempty"`
	Aggregate   TechnicianAggregate `json:"aggregate"`
	Predictions Predictions         `json:"predictions"`
	Leaderboard []TechnicianSummary `json:"leaderboard"`
}
