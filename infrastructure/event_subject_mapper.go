package infrastructure

import (
	"fmt"

	"borrowbot/events"
)

// EventStreamName is the JetStream stream holding all borrowbot subjects
const EventStreamName = "borrowbot_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBorrowCommitted:
		return "borrowbot.borrow.committed"
	case events.EventTypeCheckinCommitted:
		return "borrowbot.checkin.committed"
	case events.EventTypeTransferCompleted:
		return "borrowbot.transfer.completed"
	case events.EventTypeTransferFailed:
		return "borrowbot.transfer.failed"
	default:
		return fmt.Sprintf("borrowbot.unknown.%s", event.Type())
	}
}

// StreamSubjects returns the subject filter of the event stream
func (m *EventSubjectMapper) StreamSubjects() []string {
	return []string{"borrowbot.>"}
}

// ForwardedTypes lists the event types sent to the message bus
func (m *EventSubjectMapper) ForwardedTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBorrowCommitted,
		events.EventTypeCheckinCommitted,
		events.EventTypeTransferCompleted,
		events.EventTypeTransferFailed,
	}
}
