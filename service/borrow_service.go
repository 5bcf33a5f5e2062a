package service

import (
	"context"
	"fmt"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// BorrowEstimateDelay is how long after creation a borrow is expected to settle
const BorrowEstimateDelay = 5 * time.Minute

// borrowService implements the BorrowService interface
type borrowService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewBorrowService creates a new borrow service
func NewBorrowService(uowFactory UnitOfWorkFactory) BorrowService {
	return &borrowService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Borrow records a pending borrow todo and marks the account as borrowing in one
// transaction. The borrowing flag is re-checked under a row lock, so a concurrent
// writer can only make this fail, never double-borrow.
func (s *borrowService) Borrow(ctx context.Context, account *models.Account, amount decimal.Decimal, day time.Time) (*models.Todo, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	isBorrowing, err := uow.AccountRepository().LockBorrowState(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if isBorrowing {
		return nil, ErrAlreadyBorrowing
	}

	createdAt := s.now().UTC()
	estimateAt := createdAt.Add(BorrowEstimateDelay)

	todo := &models.Todo{
		TodoType:      models.TodoTypeOnchainBorrow,
		AccountID:     account.ID,
		InvoiceID:     NewBorrowInvoiceID(),
		Status:        models.TodoStatusPending,
		Address:       account.Wallet.Address,
		Amount:        amount,
		OnchainAmount: ToNano(amount),
		EstimateAt:    estimateAt,
	}

	inserted, err := uow.TodoRepository().InsertPendingIfAbsent(ctx, todo)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrTodoNotInserted
	}

	updated, err := uow.AccountRepository().MarkBorrowing(ctx, account.ID, createdAt, estimateAt, day)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrAccountNotUpdated
	}

	uow.EventBus().Publish(events.BorrowCommittedEvent{
		AccountID:     account.ID,
		TeleID:        account.TeleID,
		InvoiceID:     todo.InvoiceID,
		Address:       todo.Address,
		Amount:        todo.Amount,
		OnchainAmount: todo.OnchainAmount,
		EstimateAt:    estimateAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"teleID":    account.TeleID,
		"name":      account.Name,
		"invoiceID": todo.InvoiceID,
		"amount":    amount.String(),
	}).Info("Borrow committed")

	return todo, nil
}
