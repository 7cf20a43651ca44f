package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/service-desk-analytics/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-analytics/internal/adapters/primary/validation"
	"github.com/lorrc/service-desk-analytics/internal/auth"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
	"github.com/lorrc/service-desk-analytics/internal/infrastructure/logging"
)

// ReportHandler handles HTTP requests for analytics reports
type ReportHandler struct {
	reports      ports.ReportService
	settings     ports.SettingsService
	errorHandler *ErrorHandler
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reports ports.ReportService,
	settings ports.SettingsService,
	errorHandler *ErrorHandler,
	maxBodyBytes int64,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:      reports,
		settings:     settings,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("handler", "report"),
	}
}

// RegisterRoutes sets up the routing for all report endpoints.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/technician", h.HandleTechnicianReport)
	r.Get("/technician/{technician}", h.HandleStoredTechnicianReport)
	r.Post("/team", h.HandleTeamReport)
}

// HandleTechnicianReport builds a report from the tickets in the body, or
// from stored tickets when none are sent.
func (h *ReportHandler) HandleTechnicianReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	req, err := validation.DecodeAndValidate[TechnicianReportRequest](w, r, h.maxBodyBytes)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	if !claims.CanView(req.Technician) {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return
	}

	filter, err := h.resolveFilter(r.Context(), claims, req.Filter, req.SavedFilterID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	ctx := r.Context()
	logging.Technician(ctx, req.Technician)
	// Only supervisors may feed inline tickets into stored profiles.
	report, err := h.reports.BuildTechnicianReport(ctx, ports.TechnicianReportParams{
		Technician:    req.Technician,
		Tickets:       req.Tickets,
		TrustTickets:  claims.IsSupervisor(),
		Filter:        filter,
		AsOf:          timeOrZero(req.AsOf),
		ImprovementPP: req.Improvement,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	logging.ReportID(ctx, report.ID)
	h.logger.InfoContext(ctx, "technician report built",
		"tickets", report.Aggregate.Total,
		"persisted", report.Gamification.Persisted,
		"recommendations", len(report.Recommendations),
	)
	WriteOK(w, report)
}

// HandleStoredTechnicianReport builds a report from stored tickets with the
// filter given as query parameters (from, to, asOf, filterId).
func (h *ReportHandler) HandleStoredTechnicianReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	technician := chi.URLParam(r, "technician")
	if !claims.CanView(technician) {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return
	}

	from, err := validation.ParseTimeQueryParam(r, "from")
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	to, err := validation.ParseTimeQueryParam(r, "to")
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	asOf, err := validation.ParseTimeQueryParam(r, "asOf")
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	var dto *FilterDTO
	if from != nil || to != nil {
		dto = &FilterDTO{From: from, To: to}
	}
	savedID := ""
	if id := validation.ParseStringQueryParam(r, "filterId"); id != nil {
		savedID = *id
	}

	filter, err := h.resolveFilter(r.Context(), claims, dto, savedID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	ctx := r.Context()
	logging.Technician(ctx, technician)
	report, err := h.reports.BuildTechnicianReport(ctx, ports.TechnicianReportParams{
		Technician: technician,
		Filter:     filter,
		AsOf:       timeOrZero(asOf),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	logging.ReportID(ctx, report.ID)
	WriteOK(w, report)
}

// HandleTeamReport builds the team overview. Supervisors only.
func (h *ReportHandler) HandleTeamReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}
	if !claims.IsSupervisor() {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return
	}

	req, err := validation.DecodeAndValidate[TeamReportRequest](w, r, h.maxBodyBytes)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	filter, err := h.resolveFilter(r.Context(), claims, req.Filter, req.SavedFilterID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	report, err := h.reports.BuildTeamReport(r.Context(), ports.TeamReportParams{
		Tickets:      req.Tickets,
		TrustTickets: true,
		Filter:       filter,
		AsOf:         timeOrZero(req.AsOf),
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	logging.ReportID(r.Context(), report.ID)
	h.logger.InfoContext(r.Context(), "team report built",
		"technicians", len(report.Leaderboard),
	)
	WriteOK(w, report)
}

// resolveFilter returns the caller's saved filter when savedID is set,
// otherwise the inline one.
func (h *ReportHandler) resolveFilter(ctx context.Context, claims *auth.Claims, inline *FilterDTO, savedID string) (*domain.TicketFilter, error) {
	if savedID == "" {
		return inline.ToDomain(), nil
	}
	if h.settings == nil {
		return nil, apperrors.ErrFilterNotFound
	}

	filters, err := h.settings.ListFilters(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		if f.ID == savedID {
			filter := f.Filter
			return &filter, nil
		}
	}
	return nil, apperrors.ErrFilterNotFound
}
