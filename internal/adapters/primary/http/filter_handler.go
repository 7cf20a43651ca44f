package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/service-desk-analytics/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-analytics/internal/adapters/primary/validation"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// FilterHandler manages the caller's saved filters
type FilterHandler struct {
	settings     ports.SettingsService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(settings ports.SettingsService, errorHandler *ErrorHandler, logger *slog.Logger) *FilterHandler {
	return &FilterHandler{
		settings:     settings,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "filter"),
	}
}

// RegisterRoutes sets up the routing for saved filters.
func (h *FilterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListFilters)
	r.Post("/", h.HandleSaveFilter)
	r.Delete("/{filterID}", h.HandleDeleteFilter)
}

func (h *FilterHandler) HandleListFilters(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	filters, err := h.settings.ListFilters(r.Context(), claims.Subject)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, filters)
}

func (h *FilterHandler) HandleSaveFilter(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	req, err := validation.DecodeAndValidate[SaveFilterRequest](w, r, 0)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	saved, err := h.settings.SaveFilter(r.Context(), claims.Subject, req.Name, *req.Filter.ToDomain())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "filter saved", "filter_id", saved.ID)
	WriteCreated(w, saved)
}

func (h *FilterHandler) HandleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	err := h.settings.DeleteFilter(r.Context(), claims.Subject, chi.URLParam(r, "filterID"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteNoContent(w)
}
