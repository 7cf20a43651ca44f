package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/memory"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/mocks"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Filters(t *testing.T) {
	ctx := context.Background()

	t.Run("save list delete", func(t *testing.T) {
		svc := services.NewSettingsService(memory.NewKeyValueStore())

		first, err := svc.SaveFilter(ctx, "ana", "Rede", domain.TicketFilter{Categories: []string{"Rede"}})
		require.NoError(t, err)
		second, err := svc.SaveFilter(ctx, "ana", "Críticos", domain.TicketFilter{Priorities: []domain.TicketPriority{domain.PriorityCritical}})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		filters, err := svc.ListFilters(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, filters, 2)
		assert.Equal(t, "Rede", filters[0].Name)
		assert.Equal(t, "Críticos", filters[1].Name)

		require.NoError(t, svc.DeleteFilter(ctx, "ana", first.ID))

		filters, err = svc.ListFilters(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, filters, 1)
		assert.Equal(t, second.ID, filters[0].ID)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		svc := services.NewSettingsService(memory.NewKeyValueStore())

		saved, err := svc.SaveFilter(ctx, "ana", "Rede", domain.TicketFilter{})
		require.NoError(t, err)

		filters, err := svc.ListFilters(ctx, "bruno")
		require.NoError(t, err)
		assert.Empty(t, filters)

		err = svc.DeleteFilter(ctx, "bruno", saved.ID)
		assert.ErrorIs(t, err, apperrors.ErrFilterNotFound)
	})

	t.Run("invalid filter is rejected", func(t *testing.T) {
		svc := services.NewSettingsService(memory.NewKeyValueStore())

		_, err := svc.SaveFilter(ctx, "ana", "", domain.TicketFilter{})
		assert.ErrorIs(t, err, apperrors.ErrFilterNameRequired)

		_, err = svc.SaveFilter(ctx, "ana", "x", domain.TicketFilter{Statuses: []domain.TicketStatus{"OPEN"}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("cap per owner", func(t *testing.T) {
		svc := services.NewSettingsService(memory.NewKeyValueStore())

		for i := 0; i < services.MaxSavedFilters; i++ {
			_, err := svc.SaveFilter(ctx, "ana", "f", domain.TicketFilter{})
			require.NoError(t, err)
		}
		_, err := svc.SaveFilter(ctx, "ana", "one too many", domain.TicketFilter{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)
	})

	t.Run("anonymous owner", func(t *testing.T) {
		svc := services.NewSettingsService(memory.NewKeyValueStore())

		_, err := svc.ListFilters(ctx, "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Get", ctx, "settings:filters:ana").Return(nil, errors.New("down"))
		svc := services.NewSettingsService(kv)

		_, err := svc.ListFilters(ctx, "ana")
		assert.ErrorContains(t, err, "list filters")
		kv.AssertExpectations(t)
	})

	t.Run("save goes through an atomic update", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore()
		kv.On("Update", ctx, "settings:filters:ana", mock.Anything).Return(nil)
		svc := services.NewSettingsService(kv)

		_, err := svc.SaveFilter(ctx, "ana", "Rede", domain.TicketFilter{})
		require.NoError(t, err)
		kv.AssertExpectations(t)
	})
}

func TestSettingsService_Goals(t *testing.T) {
	ctx := context.Background()
	svc := services.NewSettingsService(memory.NewKeyValueStore())

	_, err := svc.GetGoal(ctx, "Ana Souza")
	assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)

	saved, err := svc.SetGoal(ctx, domain.Goal{Technician: " Ana Souza ", TargetCompliance: 90, MonthlyResolved: 30})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", saved.Technician)
	assert.False(t, saved.UpdatedAt.IsZero())

	goal, err := svc.GetGoal(ctx, "ana souza")
	require.NoError(t, err)
	assert.Equal(t, 90.0, goal.TargetCompliance)
	assert.Equal(t, 30, goal.MonthlyResolved)

	_, err = svc.SetGoal(ctx, domain.Goal{Technician: "Ana", TargetCompliance: 150})
	assert.ErrorIs(t, err, apperrors.ErrInvalidGoal)

	_, err = svc.GetGoal(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrTechnicianRequired)
}
