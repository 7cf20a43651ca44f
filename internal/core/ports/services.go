package ports

import (
	"context"
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// TechnicianReportParams defines the input for a technician report. When
// Tickets is empty the configured TicketSource is used.
//
// Reports built from the TicketSource always update the stored gamification
// profile. Caller-supplied Tickets do so only when TrustTickets is set;
// otherwise the outcome is computed and returned unsaved.
type TechnicianReportParams struct {
	Technician    string
	Tickets       []domain.RawTicket
	TrustTickets  bool
	Filter        *domain.TicketFilter
	AsOf          time.Time
	ImprovementPP *float64
}

// TeamReportParams defines the input for a team report. TrustTickets works
// as in TechnicianReportParams.
type TeamReportParams struct {
	Tickets      []domain.RawTicket
	TrustTickets bool
	Filter       *domain.TicketFilter
	AsOf         time.Time
}

// GamificationInput is everything one evaluation looks at.
type GamificationInput struct {
	Technician    string
	Tickets       []domain.TicketRecord
	Aggregate     domain.TechnicianAggregate
	ImprovementPP float64
	AsOf          time.Time
	// Preview scores against the stored profile without saving the result.
	Preview bool
}

// ReportService builds analytics reports.
type ReportService interface {
	BuildTechnicianReport(ctx context.Context, params TechnicianReportParams) (*domain.Report, error)
	BuildTeamReport(ctx context.Context, params TeamReportParams) (*domain.TeamReport, error)
}

// GamificationService computes and persists XP, levels and badges.
type GamificationService interface {
	Evaluate(ctx context.Context, input GamificationInput) (*domain.GamificationResult, error)
	GetProfile(ctx context.Context, technicianID string) (*domain.GamificationProfile, error)
}

// SettingsService manages saved filters and goals.
type SettingsService interface {
	SaveFilter(ctx context.Context, owner, name string, filter domain.TicketFilter) (*domain.SavedFilter, error)
	ListFilters(ctx context.Context, owner string) ([]domain.SavedFilter, error)
	DeleteFilter(ctx context.Context, owner, filterID string) error
	SetGoal(ctx context.Context, goal domain.Goal) (*domain.Goal, error)
	GetGoal(ctx context.Context, technician string) (*domain.Goal, error)
}

// ImportService loads raw ticket records into storage.
type ImportService interface {
	ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error)
}

// EventBroadcaster defines the port for broadcasting real-time events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
