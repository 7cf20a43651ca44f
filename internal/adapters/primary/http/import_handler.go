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

// ImportHandler accepts raw ticket exports for storage
type ImportHandler struct {
	imports      ports.ImportService
	errorHandler *ErrorHandler
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(imports ports.ImportService, errorHandler *ErrorHandler, maxBodyBytes int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		imports:      imports,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("handler", "import"),
	}
}

// RegisterRoutes sets up the routing for ticket imports.
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/import", h.HandleImport)
}

// HandleImport stores a batch of raw records. Supervisors only.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}
	if !claims.IsSupervisor() {
		h.errorHandler.Handle(w, r, apperrors.ErrForbidden)
		return
	}

	req, err := validation.DecodeAndValidate[ImportTicketsRequest](w, r, h.maxBodyBytes)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	n, err := h.imports.ImportTickets(r.Context(), req.Tickets)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "tickets imported", "count", n)
	WriteCreated(w, ImportTicketsResponse{Imported: n})
}
