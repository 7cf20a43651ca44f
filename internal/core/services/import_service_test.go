package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/mocks"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportService_ImportTickets(t *testing.T) {
	ctx := context.Background()
	tickets := []domain.RawTicket{{"ID": "1"}, {"ID": "2"}}

	t.Run("success", func(t *testing.T) {
		repo := mocks.NewMockTicketRepository()
		repo.On("ImportTickets", ctx, tickets).Return(2, nil)
		svc := services.NewImportService(repo, testLogger())

		n, err := svc.ImportTickets(ctx, tickets)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := mocks.NewMockTicketRepository()
		repo.On("ImportTickets", ctx, tickets).Return(0, errors.New("disk full"))
		svc := services.NewImportService(repo, testLogger())

		_, err := svc.ImportTickets(ctx, tickets)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("empty batch", func(t *testing.T) {
		repo := mocks.NewMockTicketRepository()
		svc := services.NewImportService(repo, testLogger())

		_, err := svc.ImportTickets(ctx, nil)
		assert.ErrorIs(t, err, apperrors.ErrNoTickets)
		repo.AssertNotCalled(t, "ImportTickets")
	})

	t.Run("oversized batch", func(t *testing.T) {
		repo := mocks.NewMockTicketRepository()
		svc := services.NewImportService(repo, testLogger())

		_, err := svc.ImportTickets(ctx, make([]domain.RawTicket, services.MaxImportBatch+1))
		assert.ErrorIs(t, err, apperrors.ErrTooManyTickets)
	})

	t.Run("no repository", func(t *testing.T) {
		svc := services.NewImportService(nil, testLogger())

		_, err := svc.ImportTickets(ctx, tickets)
		assert.ErrorIs(t, err, apperrors.ErrImportUnsupported)
	})
}
