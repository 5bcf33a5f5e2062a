package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceIDs(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^B[0-9]{16}$`), NewBorrowInvoiceID())
	assert.Regexp(t, regexp.MustCompile(`^CK[0-9]{15}$`), NewCheckinInvoiceID())
	assert.Equal(t, "X", GenerateInvoiceID("X", 0))
}
