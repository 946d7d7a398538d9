package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"ledger/internal/core"
)

// EntityMessage identifies one row touched by a ledger operation.
type EntityMessage struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// EventMessage is the wire form of a committed ledger operation.
// It carries references only; consumers read current state from the store.
type EventMessage struct {
	ID         string          `json:"id"`
	Owner      string          `json:"owner"`
	Operation  string          `json:"operation"`
	Entities   []EntityMessage `json:"entities"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewEventMessage(e core.Event) *EventMessage {
	ents := make([]EntityMessage, len(e.Entities))
	for i, r := range e.Entities {
		ents[i] = EntityMessage{Kind: string(r.Kind), ID: r.ID}
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &EventMessage{
		ID:         e.ID,
		Owner:      string(e.Owner),
		Operation:  e.Operation,
		Entities:   ents,
		OccurredAt: at,
	}
}

// Event converts the message back to the domain form.
func (m *EventMessage) Event() core.Event {
	refs := make([]core.EntityRef, len(m.Entities))
	for i, e := range m.Entities {
		refs[i] = core.EntityRef{Kind: core.Kind(e.Kind), ID: e.ID}
	}
	return core.Event{
		ID:         m.ID,
		Owner:      core.Owner(m.Owner),
		Operation:  m.Operation,
		Entities:   refs,
		OccurredAt: m.OccurredAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes and sanity-checks a message body.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.Operation == "" {
		return nil, errors.New("event message missing id or operation")
	}
	return &msg, nil
}
