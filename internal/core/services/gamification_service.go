package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// XP rewards
const (
	xpPerResolvedWithinSLA = 10
	xpPerImprovementPoint  = 5
)

var complianceBonuses = []struct {
	min   float64
	bonus int
}{
	{95, 50},
	{90, 30},
	{80, 15},
}

var volumeBonuses = []struct {
	min   int
	bonus int
}{
	{100, 100},
	{50, 50},
	{25, 25},
}

// CalculateXP scores an aggregate. Each bonus table pays only its highest
// matching tier. improvementPP adds XP only when positive.
func CalculateXP(agg domain.TechnicianAggregate, improvementPP float64) int {
	xp := float64(agg.ResolvedWithinSLA * xpPerResolvedWithinSLA)

	// Compliance is met over total, so open tickets that have not breached
	// yet count as met. A technician with nothing resolved and nothing late
	// still earns the top tier; this is intended.
	if agg.Total > 0 {
		for _, tier := range complianceBonuses {
			if agg.SLACompliance >= tier.min {
				xp += float64(tier.bonus)
				break
			}
		}
	}
	for _, tier := range volumeBonuses {
		if agg.Resolved >= tier.min {
			xp += float64(tier.bonus)
			break
		}
	}
	if improvementPP > 0 {
		xp += xpPerImprovementPoint * improvementPP
	}

	return int(math.Round(xp))
}

// GamificationService awards XP, levels and badges and keeps the profile in
// a ProfileStore.
type GamificationService struct {
	store       ports.ProfileStore
	broadcaster ports.EventBroadcaster
	evaluator   *SLAEvaluator
	policy      domain.Policy
	logger      *slog.Logger
}

var _ ports.GamificationService = (*GamificationService)(nil)

// NewGamificationService creates a new gamification service. broadcaster
// may be nil.
func NewGamificationService(
	store ports.ProfileStore,
	broadcaster ports.EventBroadcaster,
	policy domain.Policy,
	logger *slog.Logger,
) *GamificationService {
	return &GamificationService{
		store:       store,
		broadcaster: broadcaster,
		evaluator:   NewSLAEvaluator(policy),
		policy:      policy,
		logger:      logger.With("component", "gamification_service"),
	}
}

// CheckBadges runs every badge predicate and returns the ids that hold.
func (s *GamificationService) CheckBadges(input ports.GamificationInput) []string {
	c := badgeContext{
		aggregate: input.Aggregate,
		tickets:   make([]evaluatedTicket, 0, len(input.Tickets)),
		asOf:      input.AsOf,
		windows:   s.policy.Windows,
	}
	for _, t := range input.Tickets {
		c.tickets = append(c.tickets, evaluatedTicket{record: t, detail: s.evaluator.EvaluateTicket(t)})
	}

	earned := []string{}
	for _, rule := range badgeRules {
		if rule.predicate(c) {
			earned = append(earned, rule.id)
		}
	}
	return earned
}

// Evaluate scores the input and merges the outcome into the stored profile.
// TotalXP never decreases, and badges already held are kept as they are.
// A Preview input is merged into a copy of the stored profile that is never
// written back. Store failures are logged and the result is computed against
// an empty profile without saving.
func (s *GamificationService) Evaluate(ctx context.Context, input ports.GamificationInput) (*domain.GamificationResult, error) {
	if input.Technician == "" {
		return nil, fmt.Errorf("evaluate gamification: technician is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	computed := CalculateXP(input.Aggregate, input.ImprovementPP)
	earned := s.CheckBadges(input)

	result := &domain.GamificationResult{ComputedXP: computed}
	merge := func(profile *domain.GamificationProfile) error {
		result.PreviousLevel = max(profile.CurrentLevel, domain.LevelForXP(profile.TotalXP).Level)
		prior := profile.TotalXP

		profile.TechnicianID = input.Technician
		profile.TotalXP = max(prior, computed)
		profile.CurrentLevel = domain.LevelForXP(profile.TotalXP).Level
		profile.LastUpdated = input.AsOf

		added := profile.AwardBadges(NewBadges(earned, profile), input.AsOf)
		result.XPEarned = profile.TotalXP - prior
		result.NewBadges = make([]domain.Badge, 0, len(added))
		for _, id := range added {
			if badge, ok := domain.BadgeByID(id); ok {
				result.NewBadges = append(result.NewBadges, badge)
			}
		}
		return nil
	}

	profile, err := s.apply(ctx, input, merge)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "profile store failed, continuing without persistence",
			"technician", input.Technician,
			"preview", input.Preview,
			"error", err,
		)
		profile = domain.NewGamificationProfile(input.Technician)
		_ = merge(profile)
	case !input.Preview:
		result.Persisted = true
	}

	result.Profile = *profile
	result.LeveledUp = profile.CurrentLevel > result.PreviousLevel
	result.Progress = domain.ProgressForXP(profile.TotalXP)

	if result.Persisted {
		s.publish(input.Technician, result)
	}
	return result, nil
}

func (s *GamificationService) apply(
	ctx context.Context,
	input ports.GamificationInput,
	merge func(*domain.GamificationProfile) error,
) (*domain.GamificationProfile, error) {
	if !input.Preview {
		return s.store.Update(ctx, input.Technician, merge)
	}
	profile, err := s.store.Load(ctx, input.Technician)
	if err != nil {
		return nil, err
	}
	return profile, merge(profile)
}

// GetProfile returns the stored profile, or a zero-value one.
func (s *GamificationService) GetProfile(ctx context.Context, technicianID string) (*domain.GamificationProfile, error) {
	if technicianID == "" {
		return nil, fmt.Errorf("get profile: technician is required")
	}
	profile, err := s.store.Load(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *GamificationService) publish(technician string, result *domain.GamificationResult) {
	if s.broadcaster == nil {
		return
	}

	for _, badge := range result.NewBadges {
		event := domain.Event{
			Type:       domain.EventBadgeEarned,
			Technician: technician,
			Payload:    domain.NewBadgeEarnedPayload(badge, result.Profile.LastUpdated),
		}
		if err := s.broadcaster.Broadcast(event); err != nil {
			s.logger.Warn("failed to broadcast badge event", "technician", technician, "badge", badge.ID, "error", err)
		}
	}

	if result.LeveledUp {
		event := domain.Event{
			Type:       domain.EventLevelUp,
			Technician: technician,
			Payload:    domain.NewLevelUpPayload(*result),
		}
		if err := s.broadcaster.Broadcast(event); err != nil {
			s.logger.Warn("failed to broadcast level event", "technician", technician, "error", err)
		}
	}
}
