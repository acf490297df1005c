// Package events defines the event payloads exchanged over the event bus.
package events

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	SummaryCompleted EventType = "summary.completed"
)

// BaseEvent carries the envelope fields shared by every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func (e BaseEvent) GetType() EventType {
	return e.Type
}

// NewBaseEvent builds the envelope for a freshly published event.
func NewBaseEvent(eventType EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   "1.0",
	}
}

// SummaryCompletedEvent is published when a summarization run finishes.
// The export worker consumes it to write the markdown file to disk.
type SummaryCompletedEvent struct {
	BaseEvent
	SummaryID primitive.ObjectID `json:"summary_id"`
	VideoID   primitive.ObjectID `json:"video_id"`
	UserID    string             `json:"user_id"`
}
