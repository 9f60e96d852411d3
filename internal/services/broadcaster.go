package services

// Broadcaster pushes gameplay events to a player's live connection.
// Delivery is best-effort; engines never block on it.
type Broadcaster interface {
	PublishPlayerEvent(userID, eventType string, data any)
}

// Event types pushed over the live connection.
const (
	EventHackResolved   = "HACK_RESOLVED"
	EventLevelUp        = "LEVEL_UP"
	EventTraceWarning   = "TRACE_WARNING"
	EventCreditsChanged = "CREDITS_CHANGED"
)
