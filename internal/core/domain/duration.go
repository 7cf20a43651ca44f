package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Minutes per unit used by both duration conventions.
const (
	minutesPerDay    = 24 * 60
	minutesPerHour   = 60
	minutesPerSecond = 1.0 / 60
)

var (
	// "2 horas 15 minutos", "1 dia 3 horas", "45 segundos"
	longFormPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(dias?|horas?|minutos?|segundos?)\b`)

	// "8h", "480 min", "2d", "1d 4h". "min" must precede "m" in the alternation.
	// Letters glued to the unit land in the third group so that words such as
	// "meses" or "horarios" are not read as units.
	shortFormPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(min|d|h|m)([a-z]*)`)

	// "1h30", "8h05": minutes written straight after the hour mark.
	hourMinutePattern = regexp.MustCompile(`(\d+)h(\d{1,2})\b`)

	// "08:00", "08:00:00"
	clockPattern = regexp.MustCompile(`^(\d+):([0-5]?\d)(?::([0-5]?\d))?$`)
)

// ParseDurationMinutes converts an elapsed-time string in the long Portuguese
// form ("2 horas 15 minutos") into minutes. Components may appear in any order
// and any subset may be missing. Whatever the long form does not consume is
// read with the short form of ParseSLATargetMinutes, so "8h" and
// "2 horas 15 min" both parse. Unrecognized input is 0.
func ParseDurationMinutes(text string) float64 {
	s := Fold(text)
	if s == "" {
		return 0
	}

	var total float64
	for _, m := range longFormPattern.FindAllStringSubmatch(s, -1) {
		value := parseDecimal(m[1])
		switch {
		case strings.HasPrefix(m[2], "dia"):
			total += value * minutesPerDay
		case strings.HasPrefix(m[2], "hora"):
			total += value * minutesPerHour
		case strings.HasPrefix(m[2], "minuto"):
			total += value
		case strings.HasPrefix(m[2], "segundo"):
			total += value * minutesPerSecond
		}
	}

	rest := strings.TrimSpace(longFormPattern.ReplaceAllString(s, " "))
	return total + parseShortForm(rest)
}

// ParseSLATargetMinutes converts a target-time string in the short form
// ("8h", "480 min", "2d", "1h30") or clock form ("08:00") into minutes. A
// number with no unit contributes nothing, and neither does a number followed
// by a word that merely starts with a unit letter ("10 meses").
func ParseSLATargetMinutes(text string) float64 {
	return parseShortForm(Fold(text))
}

func parseShortForm(s string) float64 {
	if s == "" {
		return 0
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		total := parseDecimal(m[1])*minutesPerHour + parseDecimal(m[2])
		if m[3] != "" {
			total += parseDecimal(m[3]) * minutesPerSecond
		}
		return total
	}

	var total float64
	for _, m := range hourMinutePattern.FindAllStringSubmatch(s, -1) {
		total += parseDecimal(m[1])*minutesPerHour + parseDecimal(m[2])
	}
	s = hourMinutePattern.ReplaceAllString(s, " ")

	for _, m := range shortFormPattern.FindAllStringSubmatch(s, -1) {
		if m[3] != "" {
			continue
		}
		value := parseDecimal(m[1])
		switch m[2] {
		case "d":
			total += value * minutesPerDay
		case "h":
			total += value * minutesPerHour
		case "min", "m":
			total += value
		}
	}
	return total
}

// parseDecimal accepts both "1.5" and the Brazilian "1,5". The patterns above
// only hand it digit runs, so a failure means 0.
func parseDecimal(s string) float64 {
	value, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
