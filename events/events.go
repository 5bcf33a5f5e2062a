package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBorrowCommitted   EventType = "borrow_committed"
	EventTypeCheckinCommitted  EventType = "checkin_committed"
	EventTypeTransferCompleted EventType = "transfer_completed"
	EventTypeTransferFailed    EventType = "transfer_failed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BorrowCommittedEvent is emitted once a borrow todo and the account flag are committed
type BorrowCommittedEvent struct {
	AccountID     int64           `json:"account_id"`
	TeleID        int64           `json:"tele_id"`
	InvoiceID     string          `json:"invoice_id"`
	Address       string          `json:"address"`
	Amount        decimal.Decimal `json:"amount"`
	OnchainAmount decimal.Decimal `json:"onchain_amount"`
	EstimateAt    time.Time       `json:"estimate_at"`
}

func (e BorrowCommittedEvent) Type() EventType {
	return EventTypeBorrowCommitted
}

// CheckinCommittedEvent is emitted once the daily quest log and checkin date are committed
type CheckinCommittedEvent struct {
	AccountID int64     `json:"account_id"`
	TeleID    int64     `json:"tele_id"`
	Day       time.Time `json:"day"`
}

func (e CheckinCommittedEvent) Type() EventType {
	return EventTypeCheckinCommitted
}

// TransferCompletedEvent is emitted when the ledger accepted an outbound transfer
type TransferCompletedEvent struct {
	JobID       string          `json:"job_id"`
	From        string          `json:"from"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
	Attempts    int             `json:"attempts"`
}

func (e TransferCompletedEvent) Type() EventType {
	return EventTypeTransferCompleted
}

// TransferFailedEvent is emitted when a transfer exhausted its attempts
type TransferFailedEvent struct {
	JobID       string          `json:"job_id"`
	From        string          `json:"from"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
	Attempts    int             `json:"attempts"`
	Error       string          `json:"error"`
}

func (e TransferFailedEvent) Type() EventType {
	return EventTypeTransferFailed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking the scheduler loops
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish satisfies the publisher interface used outside a unit of work
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Handlers outlive the transaction, so they must not inherit its context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for a commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
