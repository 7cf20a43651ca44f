package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// MaxImportBatch caps the records accepted by one import call.
const MaxImportBatch = 10000

// ImportService loads raw ticket records into the ticket repository.
type ImportService struct {
	repo   ports.TicketRepository
	logger *slog.Logger
}

var _ ports.ImportService = (*ImportService)(nil)

// NewImportService creates a new import service. repo may be nil when the
// configured backend cannot store tickets.
func NewImportService(repo ports.TicketRepository, logger *slog.Logger) ports.ImportService {
	return &ImportService{
		repo:   repo,
		logger: logger.With("component", "import_service"),
	}
}

func (s *ImportService) ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error) {
	if s.repo == nil {
		return 0, apperrors.ErrImportUnsupported
	}
	if len(tickets) == 0 {
		return 0, apperrors.ErrNoTickets
	}
	if len(tickets) > MaxImportBatch {
		return 0, apperrors.ErrTooManyTickets
	}

	n, err := s.repo.ImportTickets(ctx, tickets)
	if err != nil {
		return 0, fmt.Errorf("import tickets: %w", err)
	}
	s.logger.InfoContext(ctx, "tickets imported", "count", n)
	return n, nil
}
