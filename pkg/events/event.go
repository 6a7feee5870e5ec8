package events

import "time"

// Event is the contract for operational events published to the bus.
// Payloads must already be PII-redacted: session and scheme ids only, never
// profile values or message text.
type Event interface {
	// EventType returns the event code, e.g. "session.started".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event codes for the assistant lifecycle.
const (
	TypeSessionStarted = "session.started"
	TypeTurnCompleted  = "turn.completed"
	TypeSessionEnded   = "session.ended"
	TypeErrorRecorded  = "error.recorded"
	TypeSchemeUpdated  = "scheme.updated"
)

// BaseEvent is the generic implementation the services publish.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SessionStarted reports a new session. userKnown says whether a returning
// user reference was supplied, without carrying the reference itself.
func SessionStarted(sessionID, language string, userKnown bool, at time.Time) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"language":   language,
			"returning":  userKnown,
		},
		OccurredAt: at,
	}
}

// TurnCompleted reports one finished conversation turn.
func TurnCompleted(sessionID, state, intent string, turn int, lowConfidence bool, at time.Time) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"state":          state,
			"intent":         intent,
			"turn":           turn,
			"low_confidence": lowConfidence,
		},
		OccurredAt: at,
	}
}

// SessionEnded reports a terminated session with aggregate counters only.
func SessionEnded(sessionID string, completed bool, turns, errors int, duration time.Duration, at time.Time) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"completed":        completed,
			"turns":            turns,
			"errors":           errors,
			"duration_seconds": int(duration.Seconds()),
		},
		OccurredAt: at,
	}
}

// ErrorRecorded reports a turn that surfaced an error to the user.
func ErrorRecorded(sessionID, kind string, at time.Time) Event {
	return BaseEvent{
		Type: TypeErrorRecorded,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"kind":       kind,
		},
		OccurredAt: at,
	}
}

// SchemeUpdated reports an admin catalog change, letting other instances
// invalidate their cached copy.
func SchemeUpdated(schemeID string, version int, at time.Time) Event {
	return BaseEvent{
		Type: TypeSchemeUpdated,
		Data: map[string]interface{}{
			"scheme_id": schemeID,
			"version":   version,
		},
		OccurredAt: at,
	}
}
