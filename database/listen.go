package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Listen holds a dedicated pooled connection subscribed to a NOTIFY channel and calls
// onNotify for every notification. onSubscribed runs once the LISTEN is in place.
// It blocks until ctx is cancelled or the connection fails and always returns a non-nil error.
func (db *DB) Listen(ctx context.Context, channel string, onSubscribed func(), onNotify func(payload string)) error {
	conn, err := db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer func() {
		// A connection closed by cancellation is discarded by the pool; a live one must not keep listening
		if !conn.Conn().IsClosed() {
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", channel, err)
	}

	if onSubscribed != nil {
		onSubscribed()
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("subscription on %s ended: %w", channel, err)
		}
		onNotify(notification.Payload)
	}
}
