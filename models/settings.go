package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemTypeBorrowBot keys the singleton settings row
const SystemTypeBorrowBot = "borrow_bot"

// RunState gates whether the schedulers may mutate accounts
type RunState string

const (
	RunStateRunning RunState = "running"
	RunStateStopped RunState = "stopped"
)

// Settings is the singleton operator-controlled configuration.
// A value is never mutated after load; changes replace the whole snapshot.
type Settings struct {
	SystemType              string          `db:"system_type"`
	State                   RunState        `db:"state"`
	MaxBorrowAccountPerDay  int             `db:"max_borrow_account_per_day"`
	MaxCheckinAccountPerDay int             `db:"max_checkin_account_per_day"`
	BorrowMathFloorPercent  decimal.Decimal `db:"borrow_math_floor_percent"`
	UpdatedAt               time.Time       `db:"updated_at"`
}

// IsRunning reports whether the schedulers may do account-mutating work
func (s *Settings) IsRunning() bool {
	return s != nil && s.State == RunStateRunning
}

// MissingFields lists the required quota fields that are absent or zero
func (s *Settings) MissingFields() []string {
	var missing []string
	if s.MaxBorrowAccountPerDay <= 0 {
		missing = append(missing, "max_borrow_account_per_day")
	}
	if s.MaxCheckinAccountPerDay <= 0 {
		missing = append(missing, "max_checkin_account_per_day")
	}
	if !s.BorrowMathFloorPercent.IsPositive() {
		missing = append(missing, "borrow_math_floor_percent")
	}
	return missing
}
