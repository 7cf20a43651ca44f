package services

import (
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// badgeContext is the evaluated ticket history a badge predicate inspects.
type badgeContext struct {
	aggregate domain.TechnicianAggregate
	tickets   []evaluatedTicket
	asOf      time.Time
	windows   domain.WindowPolicy
}

type evaluatedTicket struct {
	record domain.TicketRecord
	detail domain.SLADetail
}

// window returns the tickets opened in the last days before asOf. Tickets
// without a parseable opened date never fall in a window.
func (c badgeContext) window(days int) []evaluatedTicket {
	if c.asOf.IsZero() {
		return nil
	}
	start := c.asOf.AddDate(0, 0, -days)
	out := make([]evaluatedTicket, 0, len(c.tickets))
	for _, t := range c.tickets {
		opened := t.record.OpenedAt
		if opened == nil || opened.Before(start) || opened.After(c.asOf) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func countResolved(tickets []evaluatedTicket) int {
	n := 0
	for _, t := range tickets {
		if t.detail.Resolved {
			n++
		}
	}
	return n
}

// badgeRule awards one badge when its predicate holds. Predicates are pure
// and read missing data as false.
type badgeRule struct {
	id        string
	predicate func(c badgeContext) bool
}

var badgeRules = []badgeRule{
	{domain.BadgeFirstResolution, func(c badgeContext) bool {
		return c.aggregate.Resolved >= 1
	}},
	{domain.BadgeSLAMaster, func(c badgeContext) bool {
		return c.aggregate.Total >= 20 && c.aggregate.SLACompliance >= 95
	}},
	{domain.BadgeSpeedDemon, func(c badgeContext) bool {
		var sum float64
		var n int
		for _, t := range c.window(c.windows.Month) {
			if t.detail.Resolved && t.detail.MinutesUsed > 0 {
				sum += t.detail.MinutesUsed
				n++
			}
		}
		return n >= 5 && sum/float64(n) <= 60
	}},
	{domain.BadgeWeeklyWarrior, func(c badgeContext) bool {
		return countResolved(c.window(c.windows.Week)) >= 10
	}},
	{domain.BadgeMarathon, func(c badgeContext) bool {
		return countResolved(c.window(c.windows.Quarter)) >= 100
	}},
	{domain.BadgePerfectWeek, func(c badgeContext) bool {
		week := c.window(c.windows.Week)
		for _, t := range week {
			if t.detail.IsExceeded {
				return false
			}
		}
		return countResolved(week) >= 5
	}},
	{domain.BadgeCentury, func(c badgeContext) bool {
		return c.aggregate.Resolved >= 100
	}},
	{domain.BadgeVersatile, func(c badgeContext) bool {
		n := 0
		for _, cat := range c.aggregate.Categories {
			if cat.Category != domain.UncategorizedCategory && cat.Resolved > 0 {
				n++
			}
		}
		return n >= 5
	}},
	{domain.BadgeCriticalHero, func(c badgeContext) bool {
		n := 0
		for _, t := range c.window(c.windows.Month) {
			if t.detail.Resolved && !t.detail.IsExceeded && t.record.Priority.IsHighOrCritical() {
				n++
			}
		}
		return n >= 10
	}},
	{domain.BadgeConsistency, func(c badgeContext) bool {
		monthly := c.aggregate.Monthly
		if len(monthly) < 3 {
			return false
		}
		for _, b := range monthly[len(monthly)-3:] {
			if b.Opened == 0 || b.SLACompliance < 90 {
				return false
			}
		}
		return true
	}},
}

// NewBadges returns the earned ids the profile does not hold yet, without
// duplicates. A nil profile holds nothing.
func NewBadges(earned []string, profile *domain.GamificationProfile) []string {
	seen := make(map[string]bool, len(earned))
	out := make([]string, 0, len(earned))
	for _, id := range earned {
		if seen[id] || (profile != nil && profile.HasBadge(id)) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
