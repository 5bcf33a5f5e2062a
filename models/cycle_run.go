package models

import (
	"time"
)

// CycleRun is the persisted outcome of one scheduler cycle
type CycleRun struct {
	ID               int64          `db:"id"`
	Pipeline         string         `db:"pipeline"`
	RunDay           time.Time      `db:"run_day"`
	Remaining        int            `db:"remaining"`
	Selected         int            `db:"selected"`
	Succeeded        int            `db:"succeeded"`
	Skipped          int            `db:"skipped"`
	Failed           int            `db:"failed"`
	ExecutionSummary map[string]any `db:"execution_summary"`
	StartedAt        time.Time      `db:"started_at"`
	FinishedAt       time.Time      `db:"finished_at"`
	CreatedAt        time.Time      `db:"created_at"`
}
