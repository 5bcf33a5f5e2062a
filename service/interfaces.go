package service

import (
	"context"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// CountBorrowedOn counts bot accounts whose borrow date is the given scheduling day
	CountBorrowedOn(ctx context.Context, day time.Time) (int, error)

	// CountCheckedInOn counts bot accounts whose checkin date is the given scheduling day
	CountCheckedInOn(ctx context.Context, day time.Time) (int, error)

	// ListBorrowCandidates returns up to limit bot accounts eligible for a borrow on day
	ListBorrowCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error)

	// ListCheckinCandidates returns up to limit bot accounts not yet checked in on day
	ListCheckinCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error)

	// LockBorrowState locks the account row and returns its is_borrowing flag
	LockBorrowState(ctx context.Context, accountID int64) (bool, error)

	// MarkBorrowing sets the borrowing flag and markers, reporting whether a row changed
	MarkBorrowing(ctx context.Context, accountID int64, at, estimateAt, day time.Time) (bool, error)

	// MarkCheckedIn sets the checkin markers, reporting whether a row changed
	MarkCheckedIn(ctx context.Context, accountID int64, at, day time.Time) (bool, error)
}

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// InsertPendingIfAbsent inserts a pending todo unless one of the same type exists for the account
	InsertPendingIfAbsent(ctx context.Context, todo *models.Todo) (bool, error)
}

// QuestLogRepository defines the interface for quest log data access
type QuestLogRepository interface {
	// Insert appends a quest log entry
	Insert(ctx context.Context, entry *models.QuestLog) error
}

// SettingsRepository loads the singleton settings row
type SettingsRepository interface {
	Get(ctx context.Context, systemType string) (*models.Settings, error)
}

// SettingsSubscriber delivers change notifications for a channel until ctx ends or the
// subscription drops
type SettingsSubscriber interface {
	Listen(ctx context.Context, channel string, onSubscribed func(), onNotify func(payload string)) error
}

// PriceStore persists the price snapshot for other processes
type PriceStore interface {
	SavePrice(ctx context.Context, snapshot models.PriceSnapshot) error
	LoadPrice(ctx context.Context) (*models.PriceSnapshot, error)
}

// PriceOracle fetches the current exchange price of a symbol
type PriceOracle interface {
	FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Ledger is the external chain holding balances and executing transfers.
// SubmitTransfer consumes the wallet's next sequence number, so calls for one wallet
// must never overlap.
type Ledger interface {
	ReadBalance(ctx context.Context, wallet models.Wallet) (decimal.Decimal, error)
	SubmitTransfer(ctx context.Context, wallet models.Wallet, destination string, amount decimal.Decimal, memo string) error
}

// SettingsView is the read side of the settings snapshot
type SettingsView interface {
	Snapshot() *models.Settings
	IsRunning() bool
}

// PriceView is the read side of the price cache
type PriceView interface {
	CurrentPrice() (decimal.Decimal, bool)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// Metrics records operational counters
type Metrics interface {
	RecordAccountOutcome(ctx context.Context, operation, outcome string)
	RecordTransferAttempt(ctx context.Context, outcome string)
	RecordPricePoll(ctx context.Context, outcome string)
}

// UnitOfWork manages a transaction and the repositories bound to it
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// AccountRepository returns the transactional account repository
	AccountRepository() AccountRepository

	// TodoRepository returns the transactional todo repository
	TodoRepository() TodoRepository

	// QuestLogRepository returns the transactional quest log repository
	QuestLogRepository() QuestLogRepository

	// EventBus returns the transactional event bus
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// BorrowService records borrow entitlements
type BorrowService interface {
	// Borrow atomically records a pending borrow todo and marks the account as borrowing
	Borrow(ctx context.Context, account *models.Account, amount decimal.Decimal, day time.Time) (*models.Todo, error)
}

// CheckinService records daily checkins
type CheckinService interface {
	// Checkin atomically logs the daily quest reward and sets the account's checkin date
	Checkin(ctx context.Context, account *models.Account, day time.Time) error
}
