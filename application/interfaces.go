package application

import (
	"context"
	"time"

	"borrowbot/models"
	"borrowbot/service"
)

// Pipeline is the per-account body driven by a DailyBatchScheduler
type Pipeline interface {
	// Name labels logs and metrics
	Name() string

	// DailyLimit is the configured number of accounts to process per scheduling day
	DailyLimit(settings *models.Settings) int

	// CountProcessed counts accounts already processed on day
	CountProcessed(ctx context.Context, day time.Time) (int, error)

	// SelectBatch returns up to limit eligible accounts for day
	SelectBatch(ctx context.Context, day time.Time, limit int) ([]*models.Account, error)

	// Process runs one account through the pipeline
	Process(ctx context.Context, account *models.Account, day time.Time, settings *models.Settings) error
}

// TransferSubmitter queues outbound transfers
type TransferSubmitter interface {
	Submit(job service.TransferJob) *service.TransferFuture
}

// CycleRunStore persists cycle reports
type CycleRunStore interface {
	Create(ctx context.Context, run *models.CycleRun) error
}
