package services_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 9, 0, 0, 0, time.UTC)
	return &t
}

// resolved builds a solved ticket opened on the given day.
func resolved(id, technician, sla, used string, opened *time.Time) domain.TicketRecord {
	return domain.TicketRecord{
		ID:          id,
		Status:      domain.StatusSolved,
		Priority:    domain.PriorityMedium,
		Category:    "Rede",
		Technician:  technician,
		OpenedAt:    opened,
		SLATarget:   sla,
		TimeToSolve: used,
	}
}

// open builds a new ticket opened on the given day.
func open(id, technician, sla, used string, opened *time.Time) domain.TicketRecord {
	t := resolved(id, technician, sla, used, opened)
	t.Status = domain.StatusNew
	return t
}
