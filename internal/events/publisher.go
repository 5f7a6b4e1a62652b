package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by this service
const (
	EventQuestionCreated      = "question.created"
	EventQuestionUpdated      = "question.updated"
	EventQuestionDeleted      = "question.deleted"
	EventQuestionImported     = "question.imported"
	EventNoteUploaded         = "note.uploaded"
	EventNotesBulkDownloaded  = "notes.bulk_downloaded"
	EventBulkNotificationSent = "system.bulk_notification"
)

// Event is the envelope for all messages published to the event bus.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an event envelope with this service as source.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "console-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
