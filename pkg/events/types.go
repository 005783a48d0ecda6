package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dyluth/contactbook/pkg/contact"
)

// EventType names the change an Event describes.
type EventType string

const (
	// EventTypeCreated is published after a contact is inserted
	EventTypeCreated EventType = "created"

	// EventTypeUpdated is published after a contact is edited in place
	EventTypeUpdated EventType = "updated"

	// EventTypeDeleted is published after a contact is removed and the
	// remaining ids are renumbered
	EventTypeDeleted EventType = "deleted"
)

// Validate checks that the event type is one of the defined values.
func (t EventType) Validate() error {
	switch t {
	case EventTypeCreated, EventTypeUpdated, EventTypeDeleted:
		return nil
	default:
		return fmt.Errorf("invalid event type: %s", t)
	}
}

// Event is a single contact change notification.
type Event struct {
	ID           string          `json:"id"`             // UUID - unique identifier for this event
	Type         EventType       `json:"type"`           // What happened
	Contact      contact.Contact `json:"contact"`        // The contact as written, or as it was before delete
	OccurredAtMs int64           `json:"occurred_at_ms"` // Unix timestamp in milliseconds
}

// NewEvent builds an Event with a fresh id and the current time.
func NewEvent(t EventType, c contact.Contact) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Type:         t,
		Contact:      c,
		OccurredAtMs: time.Now().UnixMilli(),
	}
}

// Validate checks the event before it is published.
func (e *Event) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.Contact.ID < 1 {
		return fmt.Errorf("invalid contact ID: %d (must be >= 1)", e.Contact.ID)
	}
	return nil
}
