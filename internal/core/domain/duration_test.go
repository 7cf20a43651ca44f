package domain_test

import (
	"testing"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"hours and minutes", "6 horas 30 minutos", 390},
		{"singular units", "1 dia 1 hora 1 minuto", 1501},
		{"seconds", "90 segundos", 1.5},
		{"reversed order", "30 minutos 6 horas", 390},
		{"accents and case", "2 HORAS 15 Minutos", 135},
		{"decimal comma", "1,5 horas", 90},
		{"short form fallback", "8h", 480},
		{"mixed forms", "2 horas 15 min", 135},
		{"empty", "", 0},
		{"not available", "N/A", 0},
		{"garbage", "sem registro", 0},
		{"months are not minutes", "10 meses", 0},
		{"dozens are not days", "3 dúzias", 0},
		{"word starting with h", "2 horários", 0},
		{"hour with trailing minutes", "1h30", 90},
		{"long form with glued short form", "1 dia 2h15", 1575},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.ParseDurationMinutes(tt.in), 1e-9)
		})
	}
}

func TestParseDurationMinutes_OrderInvariant(t *testing.T) {
	a := domain.ParseDurationMinutes("1 dia 2 horas 3 minutos")
	b := domain.ParseDurationMinutes("3 minutos 1 dia 2 horas")
	c := domain.ParseDurationMinutes("2 horas 3 minutos 1 dia")

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, float64(24*60+2*60+3), a)
}

func TestParseSLATargetMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"hours", "8h", 480},
		{"hours with space", "10 h", 600},
		{"minutes", "480 min", 480},
		{"minutes short", "45m", 45},
		{"days", "2d", 2880},
		{"combined", "1d 4h", 1680},
		{"clock", "08:00", 480},
		{"clock with seconds", "01:30:30", 90.5},
		{"bare number", "480", 0},
		{"empty", "", 0},
		{"garbage", "N/A", 0},
		{"glued units", "1d4h", 1680},
		{"hour with trailing minutes", "1h30", 90},
		{"hour with padded minutes", "8h05", 485},
		{"hour and minute units glued", "1h30m", 90},
		{"minutes plural word", "5 meses", 0},
		{"dozens", "3 dúzias", 0},
		{"schedule word", "2 horários", 0},
		{"unit word mixed with valid unit", "2 horários 4h", 240},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.ParseSLATargetMinutes(tt.in), 1e-9)
		})
	}
}

func TestParseDurationMinutes_NeverNegative(t *testing.T) {
	for _, in := range []string{"-5 horas", "-8h", "horas", "::", "0 minutos"} {
		assert.GreaterOrEqual(t, domain.ParseDurationMinutes(in), 0.0, in)
	}
}
