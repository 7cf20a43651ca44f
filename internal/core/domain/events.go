package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventBadgeEarned   EventType = "BADGE_EARNED"
	EventLevelUp       EventType = "LEVEL_UP"
	EventReportUpdated EventType = "REPORT_UPDATED"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type       EventType   `json:"type"`
	Payload    interface{} `json:"payload"`
	Technician string      `json:"technician"` // Used for routing to per-technician rooms
}
