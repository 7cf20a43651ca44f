package domain

import "time"

// BadgeEarnedPayload is broadcast once per newly awarded badge.
type BadgeEarnedPayload struct {
	Badge    Badge  `json:"badge"`
	EarnedAt string `json:"earnedAt"`
}

// LevelUpPayload is broadcast when an evaluation moves a technician up.
type LevelUpPayload struct {
	PreviousLevel int    `json:"previousLevel"`
	Level         int    `json:"level"`
	LevelName     string `json:"levelName"`
	TotalXP       int    `json:"totalXP"`
}

// ReportSummaryPayload is broadcast after a technician report is built.
type ReportSummaryPayload struct {
	ReportID      string  `json:"reportId"`
	SLACompliance float64 `json:"slaCompliance"`
	Open          int     `json:"open"`
	BurnoutRisk   float64 `json:"burnoutRisk"`
	GeneratedAt   string  `json:"generatedAt"`
}

// NewBadgeEarnedPayload builds a badge payload.
func NewBadgeEarnedPayload(badge Badge, at time.Time) BadgeEarnedPayload {
	return BadgeEarnedPayload{
		Badge:    badge,
		EarnedAt: at.UTC().Format(time.RFC3339),
	}
}

// NewLevelUpPayload builds a level payload from an evaluation result.
func NewLevelUpPayload(result GamificationResult) LevelUpPayload {
	level := LevelForXP(result.Profile.TotalXP)
	return LevelUpPayload{
		PreviousLevel: result.PreviousLevel,
		Level:         level.Level,
		LevelName:     level.Name,
		TotalXP:       result.Profile.TotalXP,
	}
}

// NewReportSummaryPayload builds a summary payload from a report.
func NewReportSummaryPayload(report *Report) ReportSummaryPayload {
	return ReportSummaryPayload{
		ReportID:      report.ID,
		SLACompliance: report.Aggregate.SLACompliance,
		Open:          report.Aggregate.Open,
		BurnoutRisk:   report.Wellness.BurnoutRisk,
		GeneratedAt:   report.GeneratedAt.UTC().Format(time.RFC3339),
	}
}
