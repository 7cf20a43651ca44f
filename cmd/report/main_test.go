package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
)

const export = `[
  {"ID": "A1", "Status": "Solucionado", "Prioridade": "Média", "Categoria": "Rede",
   "Atribuído para - Técnico": "Ana", "Data de abertura": "10/03/2025 09:00",
   "SLA - Tempo para solução": "8h", "Estatísticas - Tempo de solução": "2 horas"},
  {"ID": "A2", "Status": "Novo", "Prioridade": "Alta", "Categoria": "Rede",
   "Atribuído para - Técnico": "Ana", "Data de abertura": "28/03/2025 10:00",
   "SLA - Tempo para solução": "10h", "Estatísticas - Tempo de solução": "8 horas"},
  {"ID": "B1", "Status": "Solucionado", "Prioridade": "Baixa", "Categoria": "Hardware",
   "Atribuído para - Técnico": "Bruno", "Data de abertura": "05/03/2025 09:00",
   "SLA - Tempo para solução": "8h", "Estatísticas - Tempo de solução": "1 hora"}
]`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_TechnicianReport(t *testing.T) {
	path := writeExport(t, export)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--input", path, "--technician", "ana", "--as-of", "2025-03-31", "--improvement", "5",
	}, nil, &stdout, &stderr)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "Ana", report.Technician)
	assert.Equal(t, 2, report.Aggregate.Total)
	assert.Equal(t, 1, report.Aggregate.Open)
	assert.True(t, report.Gamification.Persisted)
}

func TestRun_Preview(t *testing.T) {
	path := writeExport(t, export)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--input", path, "-t", "Bruno", "--as-of", "2025-03-31", "--preview",
	}, nil, &stdout, &stderr)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.False(t, report.Gamification.Persisted)
	assert.Equal(t, 60, report.Gamification.ComputedXP)
}

func TestRun_TeamReportFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-i", "-", "--team", "--pretty"},
		strings.NewReader(`{"tickets": `+export+`}`), &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "\n  \"leaderboard\"")
	var report domain.TeamReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Leaderboard, 2)
	assert.Equal(t, 1, report.Leaderboard[0].Rank)
}

func TestRun_FilterNarrowsTickets(t *testing.T) {
	path := writeExport(t, export)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--input", path, "--technician", "Ana", "--status", "solved", "--as-of", "2025-03-31",
	}, nil, &stdout, &stderr)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 1, report.Aggregate.Total)
	require.NotNil(t, report.Filter)
	assert.Equal(t, []domain.TicketStatus{domain.StatusSolved}, report.Filter.Statuses)
}

func TestRun_Errors(t *testing.T) {
	path := writeExport(t, export)

	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{name: "missing input", args: []string{"--team"}, wantErr: "--input is required"},
		{name: "no mode", args: []string{"--input", path}, wantErr: "--technician or --team"},
		{name: "both modes", args: []string{"--input", path, "--team", "-t", "Ana"}, wantErr: "mutually exclusive"},
		{name: "bad date", args: []string{"--input", path, "--team", "--as-of", "31/03/2025"}, wantErr: "--as-of"},
		{name: "bad priority", args: []string{"--input", path, "--team", "--priority", "urgent"}, is: apperrors.ErrInvalidPriority},
		{name: "unknown store", args: []string{"--input", path, "--team", "--store", "etcd"}, wantErr: "unsupported backend"},
		{name: "unknown technician", args: []string{"--input", path, "-t", "Zé"}, is: apperrors.ErrTechnicianNotFound},
		{name: "missing file", args: []string{"--input", filepath.Join(t.TempDir(), "nope.json"), "--team"}, wantErr: "read input"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, nil, &stdout, &stderr)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			} else {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			assert.Empty(t, stdout.String())
		})
	}
}

func TestReadTickets_RejectsMalformed(t *testing.T) {
	_, err := readTickets("-", strings.NewReader(`{"tickets": 3}`))
	assert.ErrorContains(t, err, "decode input")

	tickets, err := readTickets("-", strings.NewReader(" [] "))
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
