package models

import (
	"time"
)

// Wallet is the on-chain identity owned by an account
type Wallet struct {
	Address    string `db:"wallet_address"`
	PrivateKey string `db:"wallet_private_key"` // hex encoded ed25519 secret
}

// Account represents one managed actor driven by the daily schedulers
type Account struct {
	ID               int64      `db:"id"`
	TeleID           int64      `db:"tele_id"`
	Name             string     `db:"name"`
	Wallet           Wallet     `db:"-"`
	IsBot            bool       `db:"is_bot"`
	IsBorrowing      bool       `db:"is_borrowing"`
	BorrowAt         *time.Time `db:"borrow_at"`
	BorrowEstimateAt *time.Time `db:"borrow_estimate_at"`
	BorrowDate       *time.Time `db:"borrow_date"`
	CheckinAt        *time.Time `db:"checkin_at"`
	CheckinDate      *time.Time `db:"checkin_date"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}
