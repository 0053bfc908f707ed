// Package websocket pushes lab state changes to connected front desks and
// lab benches. Services publish through EventPublisher; the Hub fans events
// out to clients subscribed to the event's topic.
package websocket

import (
	"context"
	"encoding/json"
	"time"
)

// TopicLab carries every lab event. Clients join it on connect.
const TopicLab = "lab"

// Event types.
const (
	EventPatientRegistered     = "patient.registered"
	EventPatientPaymentUpdated = "patient.payment_updated"
	EventPatientBillingUpdated = "patient.billing_updated"
	EventPatientDeleted        = "patient.deleted"
	EventPatientTestDeleted    = "patient.test_deleted"
	EventResultAdded           = "result.added"
	EventResultReset           = "result.reset"
	EventFilterUpdated         = "settings.filter_updated"
)

type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event on the lab topic. Data that fails to marshal is
// dropped; the event itself still goes out.
func NewEvent(eventType, entity, entityID string, data interface{}) Event {
	ev := Event{
		Type:      eventType,
		Topic:     TopicLab,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			ev.Data = raw
		}
	}
	return ev
}

// ClientMessage is an inbound subscribe/unsubscribe request.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Type
	}
	return out
}
