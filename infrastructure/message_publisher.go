package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// MessagePublisher defines the interface for publishing messages to a message bus
type MessagePublisher interface {
	// Publish publishes a message to the specified subject
	Publish(ctx context.Context, subject string, data []byte) error
}

// NoopMessagePublisher drops every message. Used when no NATS servers are configured.
type NoopMessagePublisher struct{}

func (NoopMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	log.WithField("subject", subject).Debug("No message bus configured, dropping message")
	return nil
}
