package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
)

// Filter limits
const (
	MaxFilterNameLength = 100
	MaxFilterValues     = 50
)

// TicketFilter narrows the ticket set before aggregation. Empty members do
// not filter.
type TicketFilter struct {
	From       *time.Time       `json:"from,omitempty"`
	To         *time.Time       `json:"to,omitempty"`
	Categories []string         `json:"categories,omitempty"`
	Priorities []TicketPriority `json:"priorities,omitempty"`
	Statuses   []TicketStatus   `json:"statuses,omitempty"`
	Technician string           `json:"technician,omitempty"`
}

// IsEmpty reports whether the filter lets every ticket through.
func (f TicketFilter) IsEmpty() bool {
	return f.From == nil && f.To == nil && len(f.Categories) == 0 &&
		len(f.Priorities) == 0 && len(f.Statuses) == 0 && f.Technician == ""
}

// Validate checks ranges and enum members.
func (f TicketFilter) Validate() error {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return apperrors.ErrInvalidDateRange
	}
	if len(f.Categories) > MaxFilterValues || len(f.Priorities) > MaxFilterValues || len(f.Statuses) > MaxFilterValues {
		return apperrors.ErrInvalidFilter
	}
	for _, p := range f.Priorities {
		if !p.IsValid() {
			return apperrors.ErrInvalidPriority
		}
	}
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return apperrors.ErrInvalidStatus
		}
	}
	return nil
}

// Matches applies the filter to one record. With a date bound set, tickets
// without a parseable opened date are excluded.
func (f TicketFilter) Matches(t TicketRecord) bool {
	if f.From != nil || f.To != nil {
		if t.OpenedAt == nil {
			return false
		}
		if f.From != nil && t.OpenedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && t.OpenedAt.After(*f.To) {
			return false
		}
	}
	if f.Technician != "" && Fold(f.Technician) != Fold(t.Technician) {
		return false
	}
	if len(f.Categories) > 0 && !containsFolded(f.Categories, t.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	return true
}

// Apply returns the matching records in their original order.
func (f TicketFilter) Apply(tickets []TicketRecord) []TicketRecord {
	if f.IsEmpty() {
		return tickets
	}
	out := make([]TicketRecord, 0, len(tickets))
	for _, t := range tickets {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFolded(values []string, v string) bool {
	v = Fold(v)
	for _, candidate := range values {
		if Fold(candidate) == v {
			return true
		}
	}
	return false
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// SavedFilter is a named filter stored per owner.
type SavedFilter struct {
	ID        string       `json:"id"`
	Owner     string       `json:"owner"`
	Name      string       `json:"name"`
	Filter    TicketFilter `json:"filter"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewSavedFilter validates and builds a saved filter.
func NewSavedFilter(id, owner, name string, filter TicketFilter, now time.Time) (*SavedFilter, error) {
	name = strings.TrimSpace(name)
	if owner == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if name == "" {
		return nil, apperrors.ErrFilterNameRequired
	}
	if len(name) > MaxFilterNameLength {
		return nil, apperrors.ErrFilterNameTooLong
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return &SavedFilter{
		ID:        id,
		Owner:     owner,
		Name:      name,
		Filter:    filter,
		CreatedAt: now,
	}, nil
}

// Goal is a technician's personal target.
type Goal struct {
	Technician       string    `json:"technician"`
	TargetCompliance float64   `json:"targetCompliance"`
	MonthlyResolved  int       `json:"monthlyResolved"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validate checks the goal bounds.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Technician) == "" {
		return apperrors.ErrTechnicianRequired
	}
	if g.TargetCompliance < 0 || g.TargetCompliance > 100 || g.MonthlyResolved < 0 {
		return apperrors.ErrInvalidGoal
	}
	if g.TargetCompliance == 0 && g.MonthlyResolved == 0 {
		return apperrors.ErrInvalidGoal
	}
	return nil
}

// GoalProgress compares current performance to a goal.
type GoalProgress struct {
	Goal               Goal    `json:"goal"`
	CurrentCompliance  float64 `json:"currentCompliance"`
	ComplianceProgress float64 `json:"complianceProgress"`
	ResolvedLast30Days int     `json:"resolvedLast30Days"`
	VolumeProgress     float64 `json:"volumeProgress"`
	Achieved           bool    `json:"achieved"`
}

// NewGoalProgress computes progress percentages clamped to [0, 100]. An
// unset target counts as met.
func NewGoalProgress(goal Goal, compliance float64, resolvedRecent int) GoalProgress {
	p := GoalProgress{
		Goal:               goal,
		CurrentCompliance:  compliance,
		ResolvedLast30Days: resolvedRecent,
		ComplianceProgress: 100,
		VolumeProgress:     100,
	}
	if goal.TargetCompliance > 0 {
		p.ComplianceProgress = clampPercent(compliance / goal.TargetCompliance * 100)
	}
	if goal.MonthlyResolved > 0 {
		p.VolumeProgress = clampPercent(float64(resolvedRecent) / float64(goal.MonthlyResolved) * 100)
	}
	p.Achieved = p.ComplianceProgress >= 100 && p.VolumeProgress >= 100
	return p
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
