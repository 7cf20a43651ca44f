package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lorrc/service-desk-analytics/internal/adapters/secondary/memory"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing profile loads as zero value", func(t *testing.T) {
		store := services.NewProfileStore(memory.NewKeyValueStore())

		profile, err := store.Load(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, "ana", profile.TechnicianID)
		assert.Equal(t, 1, profile.CurrentLevel)
		assert.NotNil(t, profile.Badges)
	})

	t.Run("update persists", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		store := services.NewProfileStore(kv)

		updated, err := store.Update(ctx, "ana", func(p *domain.GamificationProfile) error {
			p.TotalXP = 300
			p.CurrentLevel = 3
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 300, updated.TotalXP)

		raw, err := kv.Get(ctx, services.ProfileKey("ana"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"totalXP":300`)

		loaded, err := store.Load(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.CurrentLevel)
	})

	t.Run("names are folded", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		store := services.NewProfileStore(kv)

		_, err := store.Update(ctx, "Zé Ramos", func(p *domain.GamificationProfile) error {
			p.TotalXP = 120
			return nil
		})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, "ze ramos")
		require.NoError(t, err)
		assert.Equal(t, 120, loaded.TotalXP)
		assert.Equal(t, "Zé Ramos", loaded.TechnicianID)
		assert.Equal(t, 1, kv.Len())
	})

	t.Run("callback error leaves the record untouched", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		store := services.NewProfileStore(kv)
		boom := errors.New("boom")

		_, err := store.Update(ctx, "ana", func(p *domain.GamificationProfile) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, kv.Len())
	})

	t.Run("legacy record without level", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		require.NoError(t, kv.Set(ctx, services.ProfileKey("ana"), json.RawMessage(`{"totalXP":600}`)))

		profile, err := services.NewProfileStore(kv).Load(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, 4, profile.CurrentLevel)
		assert.Equal(t, "ana", profile.TechnicianID)
	})

	t.Run("corrupt record", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		require.NoError(t, kv.Set(ctx, services.ProfileKey("ana"), json.RawMessage(`not json`)))

		_, err := services.NewProfileStore(kv).Load(ctx, "ana")
		assert.Error(t, err)
	})
}
