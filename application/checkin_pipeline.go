package application

import (
	"context"
	"fmt"
	"time"

	"borrowbot/models"
	"borrowbot/service"
)

// CheckinPipeline logs the daily quest reward and pays the checkin fee to the product address
type CheckinPipeline struct {
	accounts       service.AccountRepository
	ledger         service.Ledger
	checkins       service.CheckinService
	transfers      TransferSubmitter
	productAddress string
}

// NewCheckinPipeline creates the checkin pipeline
func NewCheckinPipeline(
	accounts service.AccountRepository,
	ledger service.Ledger,
	checkins service.CheckinService,
	transfers TransferSubmitter,
	productAddress string,
) *CheckinPipeline {
	return &CheckinPipeline{
		accounts:       accounts,
		ledger:         ledger,
		checkins:       checkins,
		transfers:      transfers,
		productAddress: productAddress,
	}
}

func (p *CheckinPipeline) Name() string { return "checkin" }

func (p *CheckinPipeline) DailyLimit(settings *models.Settings) int {
	return settings.MaxCheckinAccountPerDay
}

func (p *CheckinPipeline) CountProcessed(ctx context.Context, day time.Time) (int, error) {
	return p.accounts.CountCheckedInOn(ctx, day)
}

func (p *CheckinPipeline) SelectBatch(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	return p.accounts.ListCheckinCandidates(ctx, day, limit)
}

// Process commits the checkin, then queues the fee transfer and waits for it.
// The transfer is never sent for a checkin that did not commit.
func (p *CheckinPipeline) Process(ctx context.Context, account *models.Account, day time.Time, _ *models.Settings) error {
	balance, err := p.ledger.ReadBalance(ctx, account.Wallet)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	if balance.LessThan(service.CheckinMinBalance) {
		return fmt.Errorf("%w: %s < %s", service.ErrBalanceTooLow, balance, service.CheckinMinBalance)
	}

	if err := p.checkins.Checkin(ctx, account, day); err != nil {
		return fmt.Errorf("checkin aborted: %w", err)
	}

	future := p.transfers.Submit(service.TransferJob{
		Wallet:      account.Wallet,
		Destination: p.productAddress,
		Amount:      service.CheckinTransferAmount,
		Memo:        service.NewCheckinInvoiceID(),
	})
	if err := future.Wait(ctx); err != nil {
		return fmt.Errorf("checkin transfer %s failed: %w", future.JobID, err)
	}
	return nil
}
