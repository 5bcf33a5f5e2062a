package application

import (
	"context"
	"sync"
	"time"

	"borrowbot/models"

	"github.com/shopspring/decimal"
)

type fakeSettings struct {
	mu       sync.Mutex
	settings *models.Settings
}

func newFakeSettings(maxBorrow, maxCheckin int) *fakeSettings {
	return &fakeSettings{settings: &models.Settings{
		SystemType:              models.SystemTypeBorrowBot,
		State:                   models.RunStateRunning,
		MaxBorrowAccountPerDay:  maxBorrow,
		MaxCheckinAccountPerDay: maxCheckin,
		BorrowMathFloorPercent:  decimal.NewFromInt(90),
	}}
}

func (f *fakeSettings) Snapshot() *models.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeSettings) IsRunning() bool {
	return f.Snapshot().IsRunning()
}

func (f *fakeSettings) SetState(state models.RunState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := *f.settings
	next.State = state
	f.settings = &next
}

type fakePrices struct {
	mu    sync.Mutex
	price *decimal.Decimal
}

func (f *fakePrices) CurrentPrice() (decimal.Decimal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.price == nil {
		return decimal.Zero, false
	}
	return *f.price, true
}

func (f *fakePrices) Set(price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = &price
}

func knownPrice() *fakePrices {
	p := &fakePrices{}
	p.Set(decimal.RequireFromString("6.5"))
	return p
}

// recordingPipeline returns a fixed batch and records which accounts were processed
type recordingPipeline struct {
	mu         sync.Mutex
	limit      int
	processed  int
	batch      []*models.Account
	selectArgs []int
	visited    []int64
	onProcess  func(account *models.Account) error
}

func (p *recordingPipeline) Name() string { return "test" }

func (p *recordingPipeline) DailyLimit(settings *models.Settings) int {
	if p.limit > 0 {
		return p.limit
	}
	return settings.MaxBorrowAccountPerDay
}

func (p *recordingPipeline) CountProcessed(ctx context.Context, day time.Time) (int, error) {
	return p.processed, nil
}

func (p *recordingPipeline) SelectBatch(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selectArgs = append(p.selectArgs, limit)
	if limit < len(p.batch) {
		return p.batch[:limit], nil
	}
	return p.batch, nil
}

func (p *recordingPipeline) Process(ctx context.Context, account *models.Account, day time.Time, settings *models.Settings) error {
	p.mu.Lock()
	p.visited = append(p.visited, account.ID)
	hook := p.onProcess
	p.mu.Unlock()

	if hook != nil {
		return hook(account)
	}
	return nil
}

func (p *recordingPipeline) Visited() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.visited...)
}

func accountsWithIDs(ids ...int64) []*models.Account {
	accounts := make([]*models.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, &models.Account{
			ID:     id,
			TeleID: 1000 + id,
			Wallet: models.Wallet{Address: "EQWallet", PrivateKey: "00"},
			IsBot:  true,
		})
	}
	return accounts
}

func fastConfig() SchedulerConfig {
	return SchedulerConfig{
		DayResetHour: 12,
		PausedRetry:  time.Millisecond,
		NoPriceRetry: time.Millisecond,
		Pace:         func() time.Duration { return 0 },
		CycleSleep:   func() time.Duration { return time.Millisecond },
	}
}

type recordingRunStore struct {
	mu   sync.Mutex
	runs []*models.CycleRun
}

func (s *recordingRunStore) Create(ctx context.Context, run *models.CycleRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *recordingRunStore) Runs() []*models.CycleRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.CycleRun(nil), s.runs...)
}
