package ports

import (
	"time"

	"aireliance/domain/core"
)

// Session event types
const (
	EventAIAnswer        = "ai_answer"
	EventTrialStarted    = "trial_started"
	EventSessionComplete = "session_complete"
)

// SessionEvent is a notification about a participant's session
type SessionEvent struct {
	ParticipantID core.ParticipantID     `json:"participant_id"`
	EventType     string                 `json:"event_type"`
	TrialIndex    int                    `json:"trial_index"`
	Data          map[string]interface{} `json:"data,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}

// EventPublisher fans session events out to interested listeners.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(event SessionEvent)
}
