package application

import (
	"context"
	"fmt"
	"time"

	"borrowbot/models"
	"borrowbot/service"
)

// BorrowPipeline records one borrow entitlement per never-borrowed bot account
type BorrowPipeline struct {
	accounts service.AccountRepository
	ledger   service.Ledger
	borrows  service.BorrowService
}

// NewBorrowPipeline creates the borrow pipeline
func NewBorrowPipeline(accounts service.AccountRepository, ledger service.Ledger, borrows service.BorrowService) *BorrowPipeline {
	return &BorrowPipeline{
		accounts: accounts,
		ledger:   ledger,
		borrows:  borrows,
	}
}

func (p *BorrowPipeline) Name() string { return "borrow" }

func (p *BorrowPipeline) DailyLimit(settings *models.Settings) int {
	return settings.MaxBorrowAccountPerDay
}

func (p *BorrowPipeline) CountProcessed(ctx context.Context, day time.Time) (int, error) {
	return p.accounts.CountBorrowedOn(ctx, day)
}

func (p *BorrowPipeline) SelectBatch(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	return p.accounts.ListBorrowCandidates(ctx, day, limit)
}

// Process reads the live balance, derives the amount and commits the borrow.
// An invalid amount is rejected before any transaction starts.
func (p *BorrowPipeline) Process(ctx context.Context, account *models.Account, day time.Time, settings *models.Settings) error {
	balance, err := p.ledger.ReadBalance(ctx, account.Wallet)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	amount, err := service.ComputeBorrowAmount(balance, settings.BorrowMathFloorPercent)
	if err != nil {
		return err
	}

	if _, err := p.borrows.Borrow(ctx, account, amount, day); err != nil {
		return fmt.Errorf("borrow of %s aborted: %w", amount, err)
	}
	return nil
}
