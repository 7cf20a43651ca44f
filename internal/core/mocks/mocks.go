package mocks

import (
	"context"
	"encoding/json"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockKeyValueStore is a mock implementation of ports.KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKeyValueStore) Update(ctx context.Context, key string, fn ports.UpdateFunc) error {
	args := m.Called(ctx, key, fn)
	return args.Error(0)
}

func (m *MockKeyValueStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProfileStore is a mock implementation of ports.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{}
}

func (m *MockProfileStore) Load(ctx context.Context, technicianID string) (*domain.GamificationProfile, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GamificationProfile), args.Error(1)
}

func (m *MockProfileStore) Update(ctx context.Context, technicianID string, fn func(profile *domain.GamificationProfile) error) (*domain.GamificationProfile, error) {
	args := m.Called(ctx, technicianID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GamificationProfile), args.Error(1)
}

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) ListTickets(ctx context.Context) ([]domain.RawTicket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawTicket), args.Error(1)
}

func (m *MockTicketRepository) ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error) {
	args := m.Called(ctx, tickets)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) CountTickets(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportService is a mock implementation of ports.ReportService
type MockReportService struct {
	mock.Mock
}

func NewMockReportService() *MockReportService {
	return &MockReportService{}
}

func (m *MockReportService) BuildTechnicianReport(ctx context.Context, params ports.TechnicianReportParams) (*domain.Report, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) BuildTeamReport(ctx context.Context, params ports.TeamReportParams) (*domain.TeamReport, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TeamReport), args.Error(1)
}

// MockGamificationService is a mock implementation of ports.GamificationService
type MockGamificationService struct {
	mock.Mock
}

func NewMockGamificationService() *MockGamificationService {
	return &MockGamificationService{}
}

func (m *MockGamificationService) Evaluate(ctx context.Context, input ports.GamificationInput) (*domain.GamificationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GamificationResult), args.Error(1)
}

func (m *MockGamificationService) GetProfile(ctx context.Context, technicianID string) (*domain.GamificationProfile, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GamificationProfile), args.Error(1)
}

// MockSettingsService is a mock implementation of ports.SettingsService
type MockSettingsService struct {
	mock.Mock
}

func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{}
}

func (m *MockSettingsService) SaveFilter(ctx context.Context, owner, name string, filter domain.TicketFilter) (*domain.SavedFilter, error) {
	args := m.Called(ctx, owner, name, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedFilter), args.Error(1)
}

func (m *MockSettingsService) ListFilters(ctx context.Context, owner string) ([]domain.SavedFilter, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavedFilter), args.Error(1)
}

func (m *MockSettingsService) DeleteFilter(ctx context.Context, owner, filterID string) error {
	args := m.Called(ctx, owner, filterID)
	return args.Error(0)
}

func (m *MockSettingsService) SetGoal(ctx context.Context, goal domain.Goal) (*domain.Goal, error) {
	args := m.Called(ctx, goal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockSettingsService) GetGoal(ctx context.Context, technician string) (*domain.Goal, error) {
	args := m.Called(ctx, technician)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

// MockImportService is a mock implementation of ports.ImportService
type MockImportService struct {
	mock.Mock
}

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportTickets(ctx context.Context, tickets []domain.RawTicket) (int, error) {
	args := m.Called(ctx, tickets)
	return args.Int(0), args.Error(1)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
