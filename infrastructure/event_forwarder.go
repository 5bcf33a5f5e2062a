package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"borrowbot/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "borrowbot"

// EventEnvelope wraps every event sent to the message bus
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// EventForwarder relays committed in-process events to the message bus
type EventForwarder struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	now           func() time.Time
}

// NewEventForwarder creates a forwarder publishing through publisher
func NewEventForwarder(publisher MessagePublisher, subjectMapper *EventSubjectMapper) *EventForwarder {
	return &EventForwarder{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		now:           time.Now,
	}
}

// Register subscribes the forwarder to every forwarded event type on bus
func (f *EventForwarder) Register(bus *events.Bus) {
	for _, eventType := range f.subjectMapper.ForwardedTypes() {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) {
			if err := f.Forward(ctx, event); err != nil {
				log.WithFields(log.Fields{
					"eventType": event.Type(),
					"error":     err,
				}).Error("Failed to forward event")
			}
		})
	}
}

// Forward publishes one event inside an envelope
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     f.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := f.subjectMapper.MapEventToSubject(event)
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event")
	return nil
}
