package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.TicketPriority
		want     bool
	}{
		{"LOW is valid", domain.PriorityLow, true},
		{"MEDIUM is valid", domain.PriorityMedium, true},
		{"HIGH is valid", domain.PriorityHigh, true},
		{"CRITICAL is valid", domain.PriorityCritical, true},
		{"UNKNOWN is invalid", domain.PriorityUnknown, false},
		{"empty is invalid", domain.TicketPriority(""), false},
		{"lowercase is invalid", domain.TicketPriority("low"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.IsValid())
		})
	}
}

func TestTicketStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status domain.TicketStatus
		want   bool
	}{
		{"NEW is valid", domain.StatusNew, true},
		{"IN_PROGRESS is valid", domain.StatusInProgress, true},
		{"PENDING is valid", domain.StatusPending, true},
		{"SOLVED is valid", domain.StatusSolved, true},
		{"CLOSED is valid", domain.StatusClosed, true},
		{"UNKNOWN is invalid", domain.StatusUnknown, false},
		{"OPEN is invalid", domain.TicketStatus("OPEN"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestParseTicketStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.TicketStatus
	}{
		{"Novo", domain.StatusNew},
		{"Em atendimento (atribuído)", domain.StatusInProgress},
		{"Em atendimento (planejado)", domain.StatusInProgress},
		{"Pendente", domain.StatusPending},
		{"Solucionado", domain.StatusSolved},
		{"SOLUCIONADO", domain.StatusSolved},
		{"Fechado", domain.StatusClosed},
		{"closed", domain.StatusClosed},
		{"", domain.StatusUnknown},
		{"???", domain.StatusUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseTicketStatus(tt.raw))
		})
	}
}

func TestParseTicketPriority(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.TicketPriority
	}{
		{"Baixa", domain.PriorityLow},
		{"Muito baixa", domain.PriorityLow},
		{"Média", domain.PriorityMedium},
		{"media", domain.PriorityMedium},
		{"Alta", domain.PriorityHigh},
		{"Muito alta", domain.PriorityHigh},
		{"Crítica", domain.PriorityCritical},
		{"Urgente", domain.PriorityCritical},
		{"1", domain.PriorityLow},
		{"3", domain.PriorityMedium},
		{"5", domain.PriorityHigh},
		{"6", domain.PriorityCritical},
		{"", domain.PriorityUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseTicketPriority(tt.raw))
		})
	}
}

func TestNormalizeTicket(t *testing.T) {
	t.Run("reads export column names", func(t *testing.T) {
		raw := domain.RawTicket{
			"ID":                              "4021",
			"Status":                          "Solucionado",
			"Prioridade":                      "Alta",
			"Categoria":                       "Rede > Wi-Fi",
			"Atribuído para - Técnico":        "Maria Souza",
			"Requerente - Requerente":         "João",
			"Data de abertura":                "03/02/2025 09:15",
			"Data da solução":                 "03/02/2025 15:45",
			"SLA - Tempo para solução":        "8h",
			"Estatísticas - Tempo de solução": "6 horas 30 minutos",
			"Tempo para solução excedido":     "Não",
		}

		rec := domain.NormalizeTicket(raw)

		assert.Equal(t, "4021", rec.ID)
		assert.Equal(t, domain.StatusSolved, rec.Status)
		assert.Equal(t, domain.PriorityHigh, rec.Priority)
		assert.Equal(t, "Rede > Wi-Fi", rec.Category)
		assert.Equal(t, "Maria Souza", rec.Technician)
		assert.Equal(t, "João", rec.Requester)
		assert.Equal(t, "8h", rec.SLATarget)
		assert.Equal(t, "6 horas 30 minutos", rec.TimeToSolve)
		assert.False(t, rec.SLAExceeded)
		require.NotNil(t, rec.OpenedAt)
		require.NotNil(t, rec.SolvedAt)
		assert.Equal(t, time.Date(2025, 2, 3, 9, 15, 0, 0, time.UTC), *rec.OpenedAt)
		assert.True(t, rec.IsResolved())
	})

	t.Run("reads camelCase keys", func(t *testing.T) {
		rec := domain.NormalizeTicket(domain.RawTicket{
			"id":          7,
			"status":      "pending",
			"priority":    "critical",
			"technician":  "Ana",
			"slaTarget":   "480 min",
			"timeToSolve": "2h",
			"slaExceeded": true,
			"openedAt":    "2025-03-01T10:00:00Z",
		})

		assert.Equal(t, "7", rec.ID)
		assert.Equal(t, domain.StatusPending, rec.Status)
		assert.Equal(t, domain.PriorityCritical, rec.Priority)
		assert.Equal(t, "Ana", rec.Technician)
		assert.True(t, rec.SLAExceeded)
		assert.True(t, rec.IsOpen())
		require.NotNil(t, rec.OpenedAt)
	})

	t.Run("falls back on case and accent drift", func(t *testing.T) {
		rec := domain.NormalizeTicket(domain.RawTicket{
			"TECNICO":      "Carlos",
			"categoria":    "Hardware",
			"sla excedido": "sim",
		})

		assert.Equal(t, "Carlos", rec.Technician)
		assert.Equal(t, "Hardware", rec.Category)
		assert.True(t, rec.SLAExceeded)
	})

	t.Run("applies defaults for missing fields", func(t *testing.T) {
		rec := domain.NormalizeTicket(domain.RawTicket{})

		assert.Equal(t, domain.UnassignedTechnician, rec.Technician)
		assert.Equal(t, domain.UncategorizedCategory, rec.Category)
		assert.Equal(t, domain.StatusUnknown, rec.Status)
		assert.Equal(t, domain.PriorityUnknown, rec.Priority)
		assert.Nil(t, rec.OpenedAt)
		assert.False(t, rec.SLAExceeded)
	})

	t.Run("blank technician is unassigned", func(t *testing.T) {
		rec := domain.NormalizeTicket(domain.RawTicket{"Técnico": "   "})
		assert.Equal(t, domain.UnassignedTechnician, rec.Technician)
	})

	t.Run("unparseable date is nil", func(t *testing.T) {
		rec := domain.NormalizeTicket(domain.RawTicket{"Data de abertura": "ontem"})
		assert.Nil(t, rec.OpenedAt)
		assert.Equal(t, "ontem", rec.OpenedAtRaw)
	})
}

func TestNormalizeTickets_PreservesOrder(t *testing.T) {
	recs := domain.NormalizeTickets([]domain.RawTicket{{"ID": "b"}, {"ID": "a"}, {"ID": "c"}})

	require.Len(t, recs, 3)
	assert.Equal(t, "b", recs[0].ID)
	assert.Equal(t, "a", recs[1].ID)
	assert.Equal(t, "c", recs[2].ID)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "media", domain.Fold(" MÉDIA "))
	assert.Equal(t, "nao atribuido", domain.Fold("Não   Atribuído"))
	assert.Equal(t, "", domain.Fold(""))
}
