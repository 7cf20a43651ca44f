package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

const (
	filtersKeyPrefix = "settings:filters:"
	goalKeyPrefix    = "settings:goal:"

	// MaxSavedFilters caps the saved filters per owner.
	MaxSavedFilters = 50
)

// SettingsService stores saved filters and goals in a KeyValueStore. Each
// owner's filters live in one document so that changes are atomic.
type SettingsService struct {
	kv  ports.KeyValueStore
	now func() time.Time
}

var _ ports.SettingsService = (*SettingsService)(nil)

// NewSettingsService creates a new settings service.
func NewSettingsService(kv ports.KeyValueStore) ports.SettingsService {
	return &SettingsService{
		kv:  kv,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SaveFilter validates and appends a filter to the owner's list.
func (s *SettingsService) SaveFilter(ctx context.Context, owner, name string, filter domain.TicketFilter) (*domain.SavedFilter, error) {
	saved, err := domain.NewSavedFilter(uuid.NewString(), owner, name, filter, s.now())
	if err != nil {
		return nil, err
	}

	err = s.kv.Update(ctx, filtersKeyPrefix+owner, func(current json.RawMessage) (json.RawMessage, error) {
		filters, err := decodeFilters(current)
		if err != nil {
			return nil, err
		}
		if len(filters) >= MaxSavedFilters {
			return nil, apperrors.ErrInvalidFilter
		}
		return json.Marshal(append(filters, *saved))
	})
	if err != nil {
		return nil, fmt.Errorf("save filter: %w", err)
	}
	return saved, nil
}

// ListFilters returns the owner's filters in creation order.
func (s *SettingsService) ListFilters(ctx context.Context, owner string) ([]domain.SavedFilter, error) {
	if owner == "" {
		return nil, apperrors.ErrUnauthorized
	}
	raw, err := s.kv.Get(ctx, filtersKeyPrefix+owner)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return decodeFilters(raw)
}

// DeleteFilter removes one of the owner's filters.
func (s *SettingsService) DeleteFilter(ctx context.Context, owner, filterID string) error {
	if owner == "" {
		return apperrors.ErrUnauthorized
	}
	err := s.kv.Update(ctx, filtersKeyPrefix+owner, func(current json.RawMessage) (json.RawMessage, error) {
		filters, err := decodeFilters(current)
		if err != nil {
			return nil, err
		}
		kept := make([]domain.SavedFilter, 0, len(filters))
		for _, f := range filters {
			if f.ID != filterID {
				kept = append(kept, f)
			}
		}
		if len(kept) == len(filters) {
			return nil, apperrors.ErrFilterNotFound
		}
		return json.Marshal(kept)
	})
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	return nil
}

// SetGoal validates and stores a technician goal, replacing any previous one.
func (s *SettingsService) SetGoal(ctx context.Context, goal domain.Goal) (*domain.Goal, error) {
	goal.Technician = strings.TrimSpace(goal.Technician)
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	goal.UpdatedAt = s.now()

	raw, err := json.Marshal(goal)
	if err != nil {
		return nil, fmt.Errorf("encode goal: %w", err)
	}
	if err := s.kv.Set(ctx, goalKey(goal.Technician), raw); err != nil {
		return nil, fmt.Errorf("set goal: %w", err)
	}
	return &goal, nil
}

// GetGoal returns the technician goal or ErrGoalNotFound.
func (s *SettingsService) GetGoal(ctx context.Context, technician string) (*domain.Goal, error) {
	technician = strings.TrimSpace(technician)
	if technician == "" {
		return nil, apperrors.ErrTechnicianRequired
	}
	raw, err := s.kv.Get(ctx, goalKey(technician))
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if raw == nil {
		return nil, apperrors.ErrGoalNotFound
	}

	var goal domain.Goal
	if err := json.Unmarshal(raw, &goal); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	return &goal, nil
}

// Goals are keyed by the folded name so "Ana Souza" and "ana souza" share one.
func goalKey(technician string) string {
	return goalKeyPrefix + domain.Fold(technician)
}

func decodeFilters(raw json.RawMessage) ([]domain.SavedFilter, error) {
	filters := []domain.SavedFilter{}
	if len(raw) == 0 {
		return filters, nil
	}
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return filters, nil
}
