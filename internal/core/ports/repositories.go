package ports

import (
	"context"
	"encoding/json"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// UpdateFunc receives the current value of a key (nil when absent) and
// returns the value to store.
type UpdateFunc func(current json.RawMessage) (json.RawMessage, error)

// KeyValueStore is the persistence port for profiles, saved filters and goals.
type KeyValueStore interface {
	// Get returns nil, nil when the key does not exist.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Update runs fn as a read-modify-write that is atomic per key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Ping(ctx context.Context) error
}

// ProfileStore persists gamification profiles.
type ProfileStore interface {
	// Load returns a zero-value profile when none is stored.
	Load(ctx context.Context, technicianID string) (*domain.GamificationProfile, error)
	// Update loads the profile, applies fn and saves the result as one atomic
	// step per technician.
	Update(ctx context.Context, technicianID string, fn func(profile *domain.GamificationProfile) error) (*domain.GamificationProfile, error)
}

// TicketSource supplies the raw ticket records a report is built from.
type TicketSource interface {
	ListTickets(ctx context.Context) ([]domain.RawTicket, error)
}

// TicketRepository stores imported ticket records.
type TicketRepository interface {
	TicketSource
	ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error)
	CountTickets(ctx context.Context) (int64, error)
}
