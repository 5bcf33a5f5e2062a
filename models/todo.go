package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TodoType tags the kind of work a todo represents
type TodoType string

const (
	TodoTypeOnchainBorrow TodoType = "rest:onchain/borrow"
)

// TodoStatus represents the lifecycle state of a todo.
// Only pending is written here; terminal states belong to the settlement service.
type TodoStatus string

const (
	TodoStatusPending TodoStatus = "pending"
)

// Todo is a generated entitlement awaiting external settlement
type Todo struct {
	ID            int64           `db:"id"`
	TodoType      TodoType        `db:"todo_type"`
	AccountID     int64           `db:"account_id"`
	InvoiceID     string          `db:"invoice_id"`
	Status        TodoStatus      `db:"status"`
	Address       string          `db:"address"`
	Amount        decimal.Decimal `db:"amount"`         // whole TON
	OnchainAmount decimal.Decimal `db:"onchain_amount"` // nanoton
	EstimateAt    time.Time       `db:"estimate_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
