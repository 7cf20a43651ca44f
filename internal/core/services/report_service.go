package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// ReportDependencies are the collaborators of the report service. Source,
// Settings and Broadcaster may be nil.
type ReportDependencies struct {
	Source       ports.TicketSource
	Gamification ports.GamificationService
	Settings     ports.SettingsService
	Broadcaster  ports.EventBroadcaster
}

// ReportOptions tune report building.
type ReportOptions struct {
	Policy          domain.Policy
	MaxWorkers      int
	BreachThreshold float64
}

// ReportService orchestrates the analytics engine into report bundles.
type ReportService struct {
	deps        ReportDependencies
	opts        ReportOptions
	evaluator   *SLAEvaluator
	predictor   *TrendPredictor
	recommender *RecommendationEngine
	wellness    *WellnessScorer
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service.
func NewReportService(deps ReportDependencies, opts ReportOptions, logger *slog.Logger) ports.ReportService {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.BreachThreshold <= 0 {
		opts.BreachThreshold = opts.Policy.Breach.AtRiskRatio
	}
	return &ReportService{
		deps:        deps,
		opts:        opts,
		evaluator:   NewSLAEvaluator(opts.Policy),
		predictor:   NewTrendPredictor(opts.Policy),
		recommender: NewRecommendationEngine(opts.Policy),
		wellness:    NewWellnessScorer(opts.Policy),
		logger:      logger.With("component", "report_service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// BuildTechnicianReport computes the full bundle for one technician, using
// the rest of the (filtered) ticket set as the team baseline.
func (s *ReportService) BuildTechnicianReport(ctx context.Context, params ports.TechnicianReportParams) (*domain.Report, error) {
	name := strings.TrimSpace(params.Technician)
	if name == "" {
		return nil, apperrors.ErrTechnicianRequired
	}

	team, err := s.loadTickets(ctx, params.Tickets, params.Filter)
	if err != nil {
		return nil, err
	}
	asOf := s.asOf(params.AsOf)

	groups := groupByTechnician(team)
	tickets, ok := groups[domain.Fold(name)]
	if !ok {
		return nil, apperrors.ErrTechnicianNotFound
	}
	name = tickets[0].Technician

	details := s.evaluator.EvaluateAll(tickets)
	agg := s.evaluator.Aggregate(tickets, asOf)
	agg.Technician = name
	teamAgg := s.evaluator.Aggregate(team, asOf)

	peers := make([]float64, 0, len(groups))
	for _, g := range groups {
		peers = append(peers, domain.Compliance(countMet(s.evaluator, g), len(g)))
	}

	open := make([]domain.SLADetail, 0, agg.Open)
	interesting := make([]domain.SLADetail, 0, len(details))
	for _, d := range details {
		if !d.Resolved {
			open = append(open, d)
		}
		if !d.Resolved || d.IsExceeded {
			interesting = append(interesting, d)
		}
	}

	game, err := s.deps.Gamification.Evaluate(ctx, ports.GamificationInput{
		Technician:    name,
		Tickets:       tickets,
		Aggregate:     agg,
		ImprovementPP: improvement(params.ImprovementPP, agg.Monthly),
		AsOf:          asOf,
		Preview:       preview(params.Tickets, params.TrustTickets),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate gamification: %w", err)
	}

	recommendations := s.recommender.Generate(RecommendationInput{
		Technician:      agg,
		Team:            teamAgg,
		TechnicianCount: len(groups),
		OpenDetails:     open,
		PeerCompliance:  peers,
	})
	wellness := s.wellness.Score(domain.WellnessInput{
		OpenTickets:     agg.Open,
		SLACompliance:   agg.SLACompliance,
		ExceededTickets: agg.SLAExceeded,
		EstimatedHours:  agg.EstimatedHours,
	})

	report := &domain.Report{
		ID:              uuid.NewString(),
		Technician:      name,
		AsOf:            asOf,
		GeneratedAt:     s.now(),
		Filter:          params.Filter,
		Aggregate:       agg,
		SLADetails:      interesting,
		Predictions:     s.predictions(agg, open, tickets),
		Gamification:    *game,
		Recommendations: recommendations,
		Wellness:        wellness,
		GoalProgress:    s.goalProgress(ctx, name, agg, details, tickets, asOf),
	}

	s.publish(report)
	return report, nil
}

// BuildTeamReport computes per-technician summaries concurrently and ranks
// them by XP, then compliance, then name.
func (s *ReportService) BuildTeamReport(ctx context.Context, params ports.TeamReportParams) (*domain.TeamReport, error) {
	team, err := s.loadTickets(ctx, params.Tickets, params.Filter)
	if err != nil {
		return nil, err
	}
	asOf := s.asOf(params.AsOf)
	groups := groupByTechnician(team)
	dryRun := preview(params.Tickets, params.TrustTickets)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summaries := make([]domain.TechnicianSummary, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxWorkers)
	for i, key := range keys {
		i := i
		tickets := groups[key]
		g.Go(func() error {
			summary, err := s.summarize(gctx, tickets, asOf, dryRun)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build team report: %w", err)
	}

	peers := make([]float64, len(summaries))
	for i, sm := range summaries {
		peers[i] = sm.SLACompliance
	}
	for i := range summaries {
		summaries[i].Percentile = PercentileRank(summaries[i].SLACompliance, peers)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.TotalXP != b.TotalXP {
			return a.TotalXP > b.TotalXP
		}
		if a.SLACompliance != b.SLACompliance {
			return a.SLACompliance > b.SLACompliance
		}
		return a.Technician < b.Technician
	})
	for i := range summaries {
		summaries[i].Rank = i + 1
	}

	teamAgg := s.evaluator.Aggregate(team, asOf)
	return &domain.TeamReport{
		ID:          uuid.NewString(),
		AsOf:        asOf,
		GeneratedAt: s.now(),
		Filter:      params.Filter,
		Aggregate:   teamAgg,
		Predictions: s.predictions(teamAgg, openDetails(s.evaluator, team), team),
		Leaderboard: summaries,
	}, nil
}

func (s *ReportService) summarize(ctx context.Context, tickets []domain.TicketRecord, asOf time.Time, dryRun bool) (domain.TechnicianSummary, error) {
	name := tickets[0].Technician
	agg := s.evaluator.Aggregate(tickets, asOf)
	agg.Technician = name

	game, err := s.deps.Gamification.Evaluate(ctx, ports.GamificationInput{
		Technician:    name,
		Tickets:       tickets,
		Aggregate:     agg,
		ImprovementPP: improvement(nil, agg.Monthly),
		AsOf:          asOf,
		Preview:       dryRun,
	})
	if err != nil {
		return domain.TechnicianSummary{}, fmt.Errorf("evaluate %q: %w", name, err)
	}

	w := s.wellness.Score(domain.WellnessInput{
		OpenTickets:     agg.Open,
		SLACompliance:   agg.SLACompliance,
		ExceededTickets: agg.SLAExceeded,
		EstimatedHours:  agg.EstimatedHours,
	})

	newBadges := make([]string, 0, len(game.NewBadges))
	for _, b := range game.NewBadges {
		newBadges = append(newBadges, b.ID)
	}
	level := domain.LevelForXP(game.Profile.TotalXP)

	return domain.TechnicianSummary{
		Technician:    name,
		Total:         agg.Total,
		Resolved:      agg.Resolved,
		Open:          agg.Open,
		SLACompliance: agg.SLACompliance,
		TotalXP:       game.Profile.TotalXP,
		Level:         level.Level,
		LevelName:     level.Name,
		BurnoutRisk:   w.BurnoutRisk,
		NewBadges:     newBadges,
	}, nil
}

func (s *ReportService) predictions(agg domain.TechnicianAggregate, open []domain.SLADetail, tickets []domain.TicketRecord) domain.Predictions {
	return domain.Predictions{
		Compliance:     s.predictor.PredictCompliance(agg.Monthly),
		ResolutionTime: s.predictor.PredictResolutionTime(agg.Monthly),
		BreachRisk:     s.predictor.AssessBreachRisk(open, s.opts.BreachThreshold),
		Seasonality:    s.predictor.DetectSeasonality(tickets, s.evaluator),
	}
}

// goalProgress degrades to nil when no goal is set or the store fails.
func (s *ReportService) goalProgress(
	ctx context.Context,
	name string,
	agg domain.TechnicianAggregate,
	details []domain.SLADetail,
	tickets []domain.TicketRecord,
	asOf time.Time,
) *domain.GoalProgress {
	if s.deps.Settings == nil {
		return nil
	}
	goal, err := s.deps.Settings.GetGoal(ctx, name)
	if err != nil {
		if !errors.Is(err, apperrors.ErrGoalNotFound) {
			s.logger.WarnContext(ctx, "failed to load goal", "technician", name, "error", err)
		}
		return nil
	}

	start := asOf.AddDate(0, 0, -s.opts.Policy.Windows.Month)
	recent := 0
	for i, t := range tickets {
		if details[i].Resolved && t.OpenedAt != nil && !t.OpenedAt.Before(start) && !t.OpenedAt.After(asOf) {
			recent++
		}
	}
	progress := domain.NewGoalProgress(*goal, agg.SLACompliance, recent)
	return &progress
}

func (s *ReportService) loadTickets(ctx context.Context, raw []domain.RawTicket, filter *domain.TicketFilter) ([]domain.TicketRecord, error) {
	if len(raw) == 0 {
		if s.deps.Source == nil {
			return nil, apperrors.ErrNoTickets
		}
		var err error
		raw, err = s.deps.Source.ListTickets(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		if len(raw) == 0 {
			return nil, apperrors.ErrNoTickets
		}
	}

	tickets := domain.NormalizeTickets(raw)
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
		tickets = filter.Apply(tickets)
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrNoTickets
	}
	return tickets, nil
}

func (s *ReportService) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t.UTC()
}

func (s *ReportService) publish(report *domain.Report) {
	if s.deps.Broadcaster == nil {
		return
	}
	event := domain.Event{
		Type:       domain.EventReportUpdated,
		Technician: report.Technician,
		Payload:    domain.NewReportSummaryPayload(report),
	}
	if err := s.deps.Broadcaster.Broadcast(event); err != nil {
		s.logger.Warn("failed to broadcast report event", "technician", report.Technician, "error", err)
	}
}

// groupByTechnician buckets tickets by folded technician name, keeping the
// input order inside each bucket.
func groupByTechnician(tickets []domain.TicketRecord) map[string][]domain.TicketRecord {
	groups := make(map[string][]domain.TicketRecord)
	for _, t := range tickets {
		key := domain.Fold(t.Technician)
		groups[key] = append(groups[key], t)
	}
	return groups
}

func countMet(e *SLAEvaluator, tickets []domain.TicketRecord) int {
	n := 0
	for _, t := range tickets {
		if !e.EvaluateTicket(t).IsExceeded {
			n++
		}
	}
	return n
}

func openDetails(e *SLAEvaluator, tickets []domain.TicketRecord) []domain.SLADetail {
	open := []domain.SLADetail{}
	for _, t := range tickets {
		if t.IsOpen() {
			open = append(open, e.EvaluateTicket(t))
		}
	}
	return open
}

// preview reports whether gamification must stay unsaved: the tickets came
// from the caller and nobody vouched for them.
func preview(raw []domain.RawTicket, trusted bool) bool {
	return len(raw) > 0 && !trusted
}

// improvement uses the caller's figure when given, otherwise the compliance
// change between the last two monthly buckets.
func improvement(explicit *float64, monthly []domain.MonthlyBucket) float64 {
	if explicit != nil {
		return *explicit
	}
	if len(monthly) < 2 {
		return 0
	}
	return monthly[len(monthly)-1].SLACompliance - monthly[len(monthly)-2].SLACompliance
}
