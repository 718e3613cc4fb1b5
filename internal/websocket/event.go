package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated       EventType = "created"
	EventTypeUpdated       EventType = "updated"
	EventTypeDeleted       EventType = "deleted"
	EventTypeStatusChanged EventType = "status_changed"
	EventTypeSynced        EventType = "synced"
	EventTypeRaised        EventType = "raised"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeCategory     EntityType = "category"
	EntityTypeCategoryList EntityType = "category_list"
	EntityTypeNotification EntityType = "notification"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "category.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "category"
	Payload   interface{} `json:"payload"`   // Entity data or state snapshot
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// CategoryStatusChanged creates a category.status_changed event
func CategoryStatusChanged(payload interface{}) Event {
	return NewEvent(EventTypeStatusChanged, EntityTypeCategory, payload)
}

// CategoryListSynced creates a category_list.synced event, sent after a full fetch
func CategoryListSynced(payload interface{}) Event {
	return NewEvent(EventTypeSynced, EntityTypeCategoryList, payload)
}

// NotificationRaised creates a notification.raised event carrying a user-visible message
func NotificationRaised(payload interface{}) Event {
	return NewEvent(EventTypeRaised, EntityTypeNotification, payload)
}
