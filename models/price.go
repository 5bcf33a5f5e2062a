package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the last known exchange price
type PriceSnapshot struct {
	Value     decimal.Decimal
	UpdatedAt time.Time
}
