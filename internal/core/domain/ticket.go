package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Defaults applied when a field is absent from the source record.
const (
	UnassignedTechnician  = "Não atribuído"
	UncategorizedCategory = "uncategorized"
)

// TicketStatus represents the normalized state of an imported ticket.
type TicketStatus string

const (
	StatusNew        TicketStatus = "NEW"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusPending    TicketStatus = "PENDING"
	StatusSolved     TicketStatus = "SOLVED"
	StatusClosed     TicketStatus = "CLOSED"
	StatusUnknown    TicketStatus = "UNKNOWN"
)

// ValidStatuses returns all known statuses, excluding Unknown.
func ValidStatuses() []TicketStatus {
	return []TicketStatus{StatusNew, StatusInProgress, StatusPending, StatusSolved, StatusClosed}
}

// IsValid checks if the status is a known value.
func (s TicketStatus) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsResolved reports whether the ticket no longer needs work.
func (s TicketStatus) IsResolved() bool {
	return s == StatusSolved || s == StatusClosed
}

// String returns the string representation of the status.
func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus maps the localized labels found in helpdesk exports
// ("Novo", "Em atendimento (atribuído)", "Solucionado", ...) to a status.
func ParseTicketStatus(raw string) TicketStatus {
	s := Fold(raw)
	switch {
	case s == "":
		return StatusUnknown
	case strings.Contains(s, "solucionado"), strings.Contains(s, "resolvido"),
		strings.Contains(s, "solved"), strings.Contains(s, "resolved"):
		return StatusSolved
	case strings.Contains(s, "fechado"), strings.Contains(s, "encerrado"), strings.Contains(s, "closed"):
		return StatusClosed
	case strings.Contains(s, "pendente"), strings.Contains(s, "aguardando"), strings.Contains(s, "pending"):
		return StatusPending
	case strings.Contains(s, "atendimento"), strings.Contains(s, "processando"),
		strings.Contains(s, "atribuido"), strings.Contains(s, "planejado"), strings.Contains(s, "progress"):
		return StatusInProgress
	case strings.Contains(s, "novo"), s == "new":
		return StatusNew
	default:
		return StatusUnknown
	}
}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "LOW"
	PriorityMedium   TicketPriority = "MEDIUM"
	PriorityHigh     TicketPriority = "HIGH"
	PriorityCritical TicketPriority = "CRITICAL"
	PriorityUnknown  TicketPriority = "UNKNOWN"
)

// ValidPriorities returns all known priorities, excluding Unknown.
func ValidPriorities() []TicketPriority {
	return []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid checks if the priority is a known value.
func (p TicketPriority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// IsHighOrCritical reports whether the priority counts towards the
// high-priority concentration checks.
func (p TicketPriority) IsHighOrCritical() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// String returns the string representation of the priority.
func (p TicketPriority) String() string {
	return string(p)
}

// ParseTicketPriority maps localized labels ("Muito alta", "Média") and the
// numeric 1-6 scale used by some exports to a priority.
func ParseTicketPriority(raw string) TicketPriority {
	s := Fold(raw)
	switch s {
	case "1", "2":
		return PriorityLow
	case "3":
		return PriorityMedium
	case "4", "5":
		return PriorityHigh
	case "6":
		return PriorityCritical
	}

	switch {
	case s == "":
		return PriorityUnknown
	case strings.Contains(s, "critica"), strings.Contains(s, "critical"), strings.Contains(s, "urgente"):
		return PriorityCritical
	case strings.Contains(s, "alta"), strings.Contains(s, "high"):
		return PriorityHigh
	case strings.Contains(s, "media"), strings.Contains(s, "medium"), s == "normal":
		return PriorityMedium
	case strings.Contains(s, "baixa"), strings.Contains(s, "low"):
		return PriorityLow
	default:
		return PriorityUnknown
	}
}

// RawTicket is one parsed export row, keyed by whatever column names the
// source system used.
type RawTicket map[string]any

// TicketRecord is the normalized, immutable input unit of the analytics engine.
type TicketRecord struct {
	ID             string
	Status         TicketStatus
	Priority       TicketPriority
	Category       string
	Technician     string
	Requester      string
	OpenedAt       *time.Time
	SolvedAt       *time.Time
	OpenedAtRaw    string
	SolvedAtRaw    string
	SLATarget      string
	TimeToSolve    string
	WaitTime       string
	AssignmentTime string
	ResolutionTime string
	SLAExceeded    bool
}

// IsResolved reports whether the ticket is solved or closed.
func (t TicketRecord) IsResolved() bool {
	return t.Status.IsResolved()
}

// IsOpen is the complement of IsResolved.
func (t TicketRecord) IsOpen() bool {
	return !t.Status.IsResolved()
}

// Field aliases, probed in order. Exports from different helpdesk versions
// spell the same column differently.
var (
	idAliases             = []string{"ID", "id", "Ticket ID", "ticketId"}
	statusAliases         = []string{"Status", "status", "Estado"}
	priorityAliases       = []string{"Prioridade", "priority", "Priority"}
	categoryAliases       = []string{"Categoria", "category", "Category"}
	technicianAliases     = []string{"Atribuído para - Técnico", "Técnico", "technician"}
	requesterAliases      = []string{"Requerente - Requerente", "Requerente", "requester"}
	openedAtAliases       = []string{"Data de abertura", "openedAt", "opening_date"}
	solvedAtAliases       = []string{"Data da solução", "solvedAt", "solve_date"}
	slaTargetAliases      = []string{"SLA - Tempo para solução", "Tempo para solução", "slaTarget"}
	timeToSolveAliases    = []string{"Estatísticas - Tempo de solução", "Tempo de solução", "timeToSolve"}
	waitTimeAliases       = []string{"Estatísticas - Tempo de espera", "Tempo de espera", "waitTime"}
	assignmentTimeAliases = []string{"Estatísticas - Tempo para atribuição", "Tempo de atribuição", "assignmentTime"}
	resolutionTimeAliases = []string{"Estatísticas - Tempo de resolução", "Tempo de resolução", "resolutionTime"}
	slaExceededAliases    = []string{"Tempo para solução excedido", "SLA excedido", "slaExceeded"}
)

// NormalizeTicket maps a raw record into a TicketRecord. It never fails:
// missing fields take their documented defaults.
func NormalizeTicket(raw RawTicket) TicketRecord {
	r := fieldReader{raw: raw}

	technician := r.text(technicianAliases)
	if technician == "" {
		technician = UnassignedTechnician
	}
	category := r.text(categoryAliases)
	if category == "" {
		category = UncategorizedCategory
	}

	openedRaw := r.text(openedAtAliases)
	solvedRaw := r.text(solvedAtAliases)

	return TicketRecord{
		ID:             r.text(idAliases),
		Status:         ParseTicketStatus(r.text(statusAliases)),
		Priority:       ParseTicketPriority(r.text(priorityAliases)),
		Category:       category,
		Technician:     technician,
		Requester:      r.text(requesterAliases),
		OpenedAt:       parseTime(r.value(openedAtAliases)),
		SolvedAt:       parseTime(r.value(solvedAtAliases)),
		OpenedAtRaw:    openedRaw,
		SolvedAtRaw:    solvedRaw,
		SLATarget:      r.text(slaTargetAliases),
		TimeToSolve:    r.text(timeToSolveAliases),
		WaitTime:       r.text(waitTimeAliases),
		AssignmentTime: r.text(assignmentTimeAliases),
		ResolutionTime: r.text(resolutionTimeAliases),
		SLAExceeded:    parseFlag(r.value(slaExceededAliases)),
	}
}

// NormalizeTickets normalizes a batch, preserving order.
func NormalizeTickets(raws []RawTicket) []TicketRecord {
	records := make([]TicketRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, NormalizeTicket(raw))
	}
	return records
}

// fieldReader looks a field up by exact alias first, then by folded alias so
// that case and accent drift in column headers still resolve.
type fieldReader struct {
	raw    RawTicket
	folded map[string]any
}

func (r *fieldReader) value(aliases []string) any {
	for _, key := range aliases {
		if v, ok := r.raw[key]; ok && !isBlank(v) {
			return v
		}
	}

	if r.folded == nil {
		r.folded = make(map[string]any, len(r.raw))
		for key, v := range r.raw {
			r.folded[Fold(key)] = v
		}
	}
	for _, key := range aliases {
		if v, ok := r.folded[Fold(key)]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func (r *fieldReader) text(aliases []string) string {
	return strings.TrimSpace(cast.ToString(r.value(aliases)))
}

func isBlank(v any) bool {
	return v == nil || strings.TrimSpace(cast.ToString(v)) == ""
}

// parseFlag reads the boolean-ish exceeded column: "Sim", "Yes", "true", 1.
func parseFlag(v any) bool {
	if s, ok := v.(string); ok {
		switch Fold(s) {
		case "sim", "s", "yes", "y", "x", "excedido", "exceeded":
			return true
		}
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

var timeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime reads the day-first local formats of helpdesk exports as well
// as ISO dates. Unparseable values yield nil.
func parseTime(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return nil
		}
		return &t
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// ParseTicketTime exposes the ticket date parser to filters and adapters.
func ParseTicketTime(s string) *time.Time {
	return parseTime(s)
}

// Fold lowercases, strips diacritics and collapses whitespace, so that
// "Média", "media" and " MÉDIA " compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
