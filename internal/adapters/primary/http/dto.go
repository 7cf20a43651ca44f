package http

import (
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// FilterDTO is the wire form of a ticket filter.
type FilterDTO struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Categories []string   `json:"categories,omitempty" validate:"max=50,dive,required,max=100"`
	Priorities []string   `json:"priorities,omitempty" validate:"max=50,dive,oneof=LOW MEDIUM HIGH CRITICAL"`
	Statuses   []string   `json:"statuses,omitempty" validate:"max=50,dive,oneof=NEW IN_PROGRESS PENDING SOLVED CLOSED"`
	Technician string     `json:"technician,omitempty" validate:"max=200"`
}

// ToDomain converts the DTO. A nil receiver yields nil.
func (f *FilterDTO) ToDomain() *domain.TicketFilter {
	if f == nil {
		return nil
	}
	out := &domain.TicketFilter{
		From:       f.From,
		To:         f.To,
		Categories: f.Categories,
		Technician: f.Technician,
	}
	for _, p := range f.Priorities {
		out.Priorities = append(out.Priorities, domain.TicketPriority(p))
	}
	for _, s := range f.Statuses {
		out.Statuses = append(out.Statuses, domain.TicketStatus(s))
	}
	return out
}

// TechnicianReportRequest is the body of POST /reports/technician.
type TechnicianReportRequest struct {
	Technician    string             `json:"technician" validate:"required,max=200"`
	Tickets       []domain.RawTicket `json:"tickets,omitempty" validate:"max=10000"`
	Filter        *FilterDTO         `json:"filter,omitempty"`
	SavedFilterID string             `json:"savedFilterId,omitempty" validate:"omitempty,uuid"`
	AsOf          *time.Time         `json:"asOf,omitempty"`
	Improvement   *float64           `json:"improvement,omitempty" validate:"omitempty,gte=-100,lte=100"`
}

// TeamReportRequest is the body of POST /reports/team.
type TeamReportRequest struct {
	Tickets       []domain.RawTicket `json:"tickets,omitempty" validate:"max=10000"`
	Filter        *FilterDTO         `json:"filter,omitempty"`
	SavedFilterID string             `json:"savedFilterId,omitempty" validate:"omitempty,uuid"`
	AsOf          *time.Time         `json:"asOf,omitempty"`
}

// SaveFilterRequest is the body of POST /filters.
type SaveFilterRequest struct {
	Name   string    `json:"name" validate:"required,max=100"`
	Filter FilterDTO `json:"filter"`
}

// GoalRequest is the body of PUT /technicians/{technician}/goal.
type GoalRequest struct {
	TargetCompliance float64 `json:"targetCompliance" validate:"gte=0,lte=100"`
	MonthlyResolved  int     `json:"monthlyResolved" validate:"gte=0,lte=100000"`
}

// ImportTicketsRequest is the body of POST /tickets/import.
type ImportTicketsRequest struct {
	Tickets []domain.RawTicket `json:"tickets" validate:"required,min=1,max=10000"`
}

// ImportTicketsResponse reports how many rows were stored.
type ImportTicketsResponse struct {
	Imported int `json:"imported"`
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
