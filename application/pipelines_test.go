package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"borrowbot/models"
	"borrowbot/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func TestBorrowPipeline_Process(t *testing.T) {
	ctx := context.Background()
	settings := newFakeSettings(5, 5).Snapshot()
	account := accountsWithIDs(1)[0]

	t.Run("borrows ninety percent floored", func(t *testing.T) {
		ledger := new(service.MockLedger)
		borrows := new(service.MockBorrowService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.RequireFromString("100.4"), nil)
		borrows.On("Borrow", ctx, account, decimal.NewFromInt(90), testDay).Return(&models.Todo{}, nil)

		pipeline := NewBorrowPipeline(new(service.MockAccountRepository), ledger, borrows)

		require.NoError(t, pipeline.Process(ctx, account, testDay, settings))
		borrows.AssertExpectations(t)
	})

	t.Run("zero balance never reaches a transaction", func(t *testing.T) {
		ledger := new(service.MockLedger)
		borrows := new(service.MockBorrowService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.Zero, nil)

		pipeline := NewBorrowPipeline(new(service.MockAccountRepository), ledger, borrows)

		err := pipeline.Process(ctx, account, testDay, settings)
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
		borrows.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("balance read error", func(t *testing.T) {
		ledger := new(service.MockLedger)
		borrows := new(service.MockBorrowService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.Zero, errors.New("liteserver timeout"))

		pipeline := NewBorrowPipeline(new(service.MockAccountRepository), ledger, borrows)

		err := pipeline.Process(ctx, account, testDay, settings)
		assert.ErrorContains(t, err, "liteserver timeout")
		borrows.AssertNotCalled(t, "Borrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("conflict is propagated", func(t *testing.T) {
		ledger := new(service.MockLedger)
		borrows := new(service.MockBorrowService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.NewFromInt(10), nil)
		borrows.On("Borrow", ctx, account, decimal.NewFromInt(9), testDay).Return(nil, service.ErrAlreadyBorrowing)

		pipeline := NewBorrowPipeline(new(service.MockAccountRepository), ledger, borrows)

		assert.ErrorIs(t, pipeline.Process(ctx, account, testDay, settings), service.ErrAlreadyBorrowing)
	})
}

func TestBorrowPipeline_Selection(t *testing.T) {
	ctx := context.Background()
	accounts := new(service.MockAccountRepository)
	accounts.On("CountBorrowedOn", ctx, testDay).Return(3, nil)
	accounts.On("ListBorrowCandidates", ctx, testDay, 2).Return(accountsWithIDs(4, 5), nil)

	pipeline := NewBorrowPipeline(accounts, nil, nil)

	count, err := pipeline.CountProcessed(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	batch, err := pipeline.SelectBatch(ctx, testDay, 2)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, 5, pipeline.DailyLimit(newFakeSettings(5, 8).Snapshot()))
}

func TestCheckinPipeline_Process(t *testing.T) {
	ctx := context.Background()
	account := accountsWithIDs(1)[0]
	const product = "EQProductAddress"

	isCheckinTransfer := func(memo string) bool {
		return len(memo) == 17 && memo[:2] == "CK"
	}

	t.Run("commits then pays the fee through the queue", func(t *testing.T) {
		ledger := new(service.MockLedger)
		checkins := new(service.MockCheckinService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.RequireFromString("0.5"), nil)
		checkins.On("Checkin", ctx, account, testDay).Return(nil)
		ledger.On("SubmitTransfer", mock.Anything, account.Wallet, product, service.CheckinTransferAmount, mock.MatchedBy(isCheckinTransfer)).Return(nil).Once()

		queue := service.NewTransferQueueWithPolicy(ctx, ledger, nil, nil, 4, time.Millisecond)
		pipeline := NewCheckinPipeline(new(service.MockAccountRepository), ledger, checkins, queue, product)

		require.NoError(t, pipeline.Process(ctx, account, testDay, nil))
		ledger.AssertExpectations(t)
		checkins.AssertExpectations(t)
	})

	t.Run("low balance skips without a transaction", func(t *testing.T) {
		ledger := new(service.MockLedger)
		checkins := new(service.MockCheckinService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.RequireFromString("0.009"), nil)

		queue := service.NewTransferQueueWithPolicy(ctx, ledger, nil, nil, 4, time.Millisecond)
		pipeline := NewCheckinPipeline(new(service.MockAccountRepository), ledger, checkins, queue, product)

		assert.ErrorIs(t, pipeline.Process(ctx, account, testDay, nil), service.ErrBalanceTooLow)
		checkins.AssertNotCalled(t, "Checkin", mock.Anything, mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("aborted checkin sends nothing", func(t *testing.T) {
		ledger := new(service.MockLedger)
		checkins := new(service.MockCheckinService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.NewFromInt(1), nil)
		checkins.On("Checkin", ctx, account, testDay).Return(service.ErrAccountNotUpdated)

		queue := service.NewTransferQueueWithPolicy(ctx, ledger, nil, nil, 4, time.Millisecond)
		pipeline := NewCheckinPipeline(new(service.MockAccountRepository), ledger, checkins, queue, product)

		assert.ErrorIs(t, pipeline.Process(ctx, account, testDay, nil), service.ErrAccountNotUpdated)
		assert.Zero(t, queue.Len())
		ledger.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exhausted transfer is reported", func(t *testing.T) {
		ledger := new(service.MockLedger)
		checkins := new(service.MockCheckinService)
		ledger.On("ReadBalance", ctx, account.Wallet).Return(decimal.NewFromInt(1), nil)
		checkins.On("Checkin", ctx, account, testDay).Return(nil)
		ledger.On("SubmitTransfer", mock.Anything, account.Wallet, product, service.CheckinTransferAmount, mock.Anything).Return(errors.New("seqno mismatch"))

		queue := service.NewTransferQueueWithPolicy(ctx, ledger, nil, nil, 4, time.Millisecond)
		pipeline := NewCheckinPipeline(new(service.MockAccountRepository), ledger, checkins, queue, product)

		err := pipeline.Process(ctx, account, testDay, nil)
		assert.ErrorContains(t, err, "seqno mismatch")
		ledger.AssertNumberOfCalls(t, "SubmitTransfer", 4)
	})
}

func TestCheckinPipeline_Selection(t *testing.T) {
	ctx := context.Background()
	accounts := new(service.MockAccountRepository)
	accounts.On("CountCheckedInOn", ctx, testDay).Return(1, nil)
	accounts.On("ListCheckinCandidates", ctx, testDay, 7).Return(accountsWithIDs(2), nil)

	pipeline := NewCheckinPipeline(accounts, nil, nil, nil, "EQProduct")

	count, err := pipeline.CountProcessed(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	batch, err := pipeline.SelectBatch(ctx, testDay, 7)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
	assert.Equal(t, 8, pipeline.DailyLimit(newFakeSettings(5, 8).Snapshot()))
}
