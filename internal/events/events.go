package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	TaskCreated    EventType = "task.created"
	TaskUpdated    EventType = "task.updated"
	TaskCompleted  EventType = "task.completed"
	TaskDeleted    EventType = "task.deleted"
	HistoryCleared EventType = "history.cleared"

	UserRegistered EventType = "user.registered"
)

// Event describes a committed change. OwnerID is nil for single-tenant tasks.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OwnerID    *uint64   `json:"owner_id,omitempty"`
	TaskIDs    []uint64  `json:"task_ids,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh ID and the current UTC time.
func NewEvent(eventType EventType, ownerID *uint64, taskIDs ...uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OwnerID:    ownerID,
		TaskIDs:    taskIDs,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events after the corresponding change has committed.
type Publisher interface {
	Publish(event Event) error
	Close()
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }
func (NopPublisher) Close()              {}
