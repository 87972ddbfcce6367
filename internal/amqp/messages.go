package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType names a domain change. The part before the dot is the entity.
type EventType string

const (
	CategoryCreated    EventType = "category.created"
	CategoryUpdated    EventType = "category.updated"
	CategoryDeleted    EventType = "category.deleted"
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

// Entity returns the entity half of the event type.
func (t EventType) Entity() string {
	entity, _, _ := strings.Cut(string(t), ".")
	return entity
}

// Event is a lightweight notification of a committed write. It carries
// only the id; consumers read the current state from the API.
type Event struct {
	Type      EventType `json:"type"`
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(t EventType, id string) *Event {
	return &Event{
		Type:      t,
		Entity:    t.Entity(),
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects bodies without a type or id.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Type == "" || e.ID == "" {
		return nil, fmt.Errorf("event missing type or id")
	}
	if e.Entity == "" {
		e.Entity = e.Type.Entity()
	}
	return &e, nil
}
