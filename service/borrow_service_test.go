package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type borrowMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	accounts  *MockAccountRepository
	todos     *MockTodoRepository
	publisher *MockEventPublisher
}

func newBorrowTestService(now time.Time) (BorrowService, *borrowMocks) {
	m := &borrowMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		accounts:  new(MockAccountRepository),
		todos:     new(MockTodoRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.accounts, m.todos, nil, m.publisher)
	m.factory.On("Create").Return(m.uow)

	svc := NewBorrowService(m.factory).(*borrowService)
	svc.now = func() time.Time { return now }
	return svc, m
}

func testAccount() *models.Account {
	return &models.Account{
		ID:     7,
		TeleID: 123456,
		Name:   "bot-7",
		Wallet: models.Wallet{Address: "EQTestWallet", PrivateKey: "00"},
		IsBot:  true,
	}
}

func TestBorrowService_Borrow_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	svc, m := newBorrowTestService(now)
	account := testAccount()

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("LockBorrowState", ctx, account.ID).Return(false, nil)
	m.todos.On("InsertPendingIfAbsent", ctx, mock.MatchedBy(func(todo *models.Todo) bool {
		return todo.TodoType == models.TodoTypeOnchainBorrow &&
			todo.AccountID == account.ID &&
			todo.Address == account.Wallet.Address &&
			todo.Amount.Equal(decimal.NewFromInt(90)) &&
			todo.OnchainAmount.Equal(decimal.NewFromInt(90_000_000_000)) &&
			todo.EstimateAt.Equal(now.Add(5*time.Minute)) &&
			len(todo.InvoiceID) == 17 && todo.InvoiceID[0] == 'B'
	})).Return(true, nil)
	m.accounts.On("MarkBorrowing", ctx, account.ID, now, now.Add(5*time.Minute), day).Return(true, nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.BorrowCommittedEvent)
		return ok && ev.AccountID == account.ID && ev.Amount.Equal(decimal.NewFromInt(90))
	})).Return()

	todo, err := svc.Borrow(ctx, account, decimal.NewFromInt(90), day)

	require.NoError(t, err)
	require.NotNil(t, todo)
	assert.Equal(t, models.TodoStatusPending, todo.Status)
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.todos.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestBorrowService_Borrow_AlreadyBorrowing(t *testing.T) {
	ctx := context.Background()
	svc, m := newBorrowTestService(time.Now())
	account := testAccount()

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("LockBorrowState", ctx, account.ID).Return(true, nil)

	_, err := svc.Borrow(ctx, account, decimal.NewFromInt(5), time.Now())

	assert.ErrorIs(t, err, ErrAlreadyBorrowing)
	m.uow.AssertNotCalled(t, "Commit")
	m.todos.AssertNotCalled(t, "InsertPendingIfAbsent", mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestBorrowService_Borrow_TodoNotInserted(t *testing.T) {
	ctx := context.Background()
	svc, m := newBorrowTestService(time.Now())
	account := testAccount()

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("LockBorrowState", ctx, account.ID).Return(false, nil)
	m.todos.On("InsertPendingIfAbsent", ctx, mock.Anything).Return(false, nil)

	_, err := svc.Borrow(ctx, account, decimal.NewFromInt(5), time.Now())

	assert.ErrorIs(t, err, ErrTodoNotInserted)
	m.uow.AssertNotCalled(t, "Commit")
	m.accounts.AssertNotCalled(t, "MarkBorrowing", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrowService_Borrow_AccountNotUpdated(t *testing.T) {
	ctx := context.Background()
	svc, m := newBorrowTestService(time.Now())
	account := testAccount()

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.accounts.On("LockBorrowState", ctx, account.ID).Return(false, nil)
	m.todos.On("InsertPendingIfAbsent", ctx, mock.Anything).Return(true, nil)
	m.accounts.On("MarkBorrowing", ctx, account.ID, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := svc.Borrow(ctx, account, decimal.NewFromInt(5), time.Now())

	assert.ErrorIs(t, err, ErrAccountNotUpdated)
	m.uow.AssertNotCalled(t, "Commit")
	m.uow.AssertCalled(t, "Rollback")
}

func TestBorrowService_Borrow_InvalidAmount(t *testing.T) {
	svc, m := newBorrowTestService(time.Now())

	_, err := svc.Borrow(context.Background(), testAccount(), decimal.Zero, time.Now())

	assert.ErrorIs(t, err, ErrInvalidAmount)
	m.factory.AssertNotCalled(t, "Create")
}

func TestBorrowService_Borrow_BeginFails(t *testing.T) {
	ctx := context.Background()
	svc, m := newBorrowTestService(time.Now())

	m.uow.On("Begin", ctx).Return(errors.New("connection refused"))

	_, err := svc.Borrow(ctx, testAccount(), decimal.NewFromInt(5), time.Now())

	assert.ErrorContains(t, err, "connection refused")
	m.accounts.AssertNotCalled(t, "LockBorrowState", mock.Anything, mock.Anything)
}
