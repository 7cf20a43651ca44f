package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/service-desk-analytics/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-analytics/internal/adapters/primary/validation"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// TechnicianHandler serves per-technician state: the gamification profile
// and the personal goal.
type TechnicianHandler struct {
	gamification ports.GamificationService
	settings     ports.SettingsService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTechnicianHandler creates a new technician handler
func NewTechnicianHandler(
	gamification ports.GamificationService,
	settings ports.SettingsService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TechnicianHandler {
	return &TechnicianHandler{
		gamification: gamification,
		settings:     settings,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "technician"),
	}
}

// RegisterRoutes mounts the routes under /technicians/{technician}.
func (h *TechnicianHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{technician}", func(r chi.Router) {
		r.Use(h.requireView)
		r.Get("/profile", h.HandleGetProfile)
		r.Get("/goal", h.HandleGetGoal)
		r.Put("/goal", h.HandleSetGoal)
	})
}

// requireView rejects callers that may not see the technician in the path.
func (h *TechnicianHandler) requireView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := mw.GetClaims(r.Context())
		if !ok {
			h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
			return
		}
		if !claims.CanView(chi.URLParam(r, "technician")) {
			h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *TechnicianHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.gamification.GetProfile(r.Context(), chi.URLParam(r, "technician"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteOK(w, profile)
}

func (h *TechnicianHandler) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.settings.GetGoal(r.Context(), chi.URLParam(r, "technician"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteOK(w, goal)
}

// HandleSetGoal replaces the goal. Technicians may set their own goal;
// supervisors may set anyone's.
func (h *TechnicianHandler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[GoalRequest](w, r, 0)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	goal, err := h.settings.SetGoal(r.Context(), domain.Goal{
		Technician:       chi.URLParam(r, "technician"),
		TargetCompliance: req.TargetCompliance,
		MonthlyResolved:  req.MonthlyResolved,
	})
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "goal updated", "technician", goal.Technician)
	WriteOK(w, goal)
}
