package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

const profileKeyPrefix = "gamification:profile:"

// ProfileKey is the key-value key a technician's profile is stored under.
// Names are folded, so spelling drift between exports maps to one profile.
func ProfileKey(technicianID string) string {
	return profileKeyPrefix + domain.Fold(technicianID)
}

// KVProfileStore keeps gamification profiles as JSON documents in a
// KeyValueStore.
type KVProfileStore struct {
	kv ports.KeyValueStore
}

var _ ports.ProfileStore = (*KVProfileStore)(nil)

// NewProfileStore creates a profile store on top of a key-value store.
func NewProfileStore(kv ports.KeyValueStore) ports.ProfileStore {
	return &KVProfileStore{kv: kv}
}

func (s *KVProfileStore) Load(ctx context.Context, technicianID string) (*domain.GamificationProfile, error) {
	raw, err := s.kv.Get(ctx, ProfileKey(technicianID))
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", technicianID, err)
	}
	return decodeProfile(technicianID, raw)
}

func (s *KVProfileStore) Update(
	ctx context.Context,
	technicianID string,
	fn func(profile *domain.GamificationProfile) error,
) (*domain.GamificationProfile, error) {
	var updated *domain.GamificationProfile

	err := s.kv.Update(ctx, ProfileKey(technicianID), func(current json.RawMessage) (json.RawMessage, error) {
		profile, err := decodeProfile(technicianID, current)
		if err != nil {
			return nil, err
		}
		if err := fn(profile); err != nil {
			return nil, err
		}
		updated = profile
		return json.Marshal(profile)
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %q: %w", technicianID, err)
	}
	return updated, nil
}

func decodeProfile(technicianID string, raw json.RawMessage) (*domain.GamificationProfile, error) {
	if len(raw) == 0 {
		return domain.NewGamificationProfile(technicianID), nil
	}

	profile := &domain.GamificationProfile{}
	if err := json.Unmarshal(raw, profile); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", technicianID, err)
	}
	if profile.TechnicianID == "" {
		profile.TechnicianID = technicianID
	}
	if profile.Badges == nil {
		profile.Badges = []domain.EarnedBadge{}
	}
	if profile.CurrentLevel < 1 {
		profile.CurrentLevel = domain.LevelForXP(profile.TotalXP).Level
	}
	return profile, nil
}
