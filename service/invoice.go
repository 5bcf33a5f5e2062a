package service

import (
	"math/rand/v2"
	"strings"
)

const (
	borrowInvoicePrefix  = "B"
	borrowInvoiceDigits  = 16
	checkinInvoicePrefix = "CK"
	checkinInvoiceDigits = 15
)

// GenerateInvoiceID returns prefix followed by n random decimal digits.
// The id is a human reference; idempotency is enforced by the store.
func GenerateInvoiceID(prefix string, n int) string {
	var b strings.Builder
	b.Grow(len(prefix) + n)
	b.WriteString(prefix)
	for range n {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// NewBorrowInvoiceID returns a fresh borrow invoice id
func NewBorrowInvoiceID() string {
	return GenerateInvoiceID(borrowInvoicePrefix, borrowInvoiceDigits)
}

// NewCheckinInvoiceID returns a fresh checkin transfer memo
func NewCheckinInvoiceID() string {
	return GenerateInvoiceID(checkinInvoicePrefix, checkinInvoiceDigits)
}
