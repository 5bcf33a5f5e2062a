package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/xssnick/tonutils-go/tlb"
)

func TestNanoToTon(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(nanoToTon(tlb.MustFromTON("1.5"))))
	assert.True(t, decimal.RequireFromString("0.000000001").Equal(nanoToTon(tlb.MustFromNano(decimal.NewFromInt(1).BigInt(), 9))))
	assert.True(t, nanoToTon(tlb.ZeroCoins).IsZero())
}
