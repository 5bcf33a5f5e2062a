package service

import (
	"context"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CountBorrowedOn(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) CountCheckedInOn(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) ListBorrowCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ListCheckinCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) LockBorrowState(ctx context.Context, accountID int64) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) MarkBorrowing(ctx context.Context, accountID int64, at, estimateAt, day time.Time) (bool, error) {
	args := m.Called(ctx, accountID, at, estimateAt, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) MarkCheckedIn(ctx context.Context, accountID int64, at, day time.Time) (bool, error) {
	args := m.Called(ctx, accountID, at, day)
	return args.Bool(0), args.Error(1)
}

// MockTodoRepository is a mock implementation of TodoRepository
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) InsertPendingIfAbsent(ctx context.Context, todo *models.Todo) (bool, error) {
	args := m.Called(ctx, todo)
	return args.Bool(0), args.Error(1)
}

// MockQuestLogRepository is a mock implementation of QuestLogRepository
type MockQuestLogRepository struct {
	mock.Mock
}

func (m *MockQuestLogRepository) Insert(ctx context.Context, entry *models.QuestLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, systemType string) (*models.Settings, error) {
	args := m.Called(ctx, systemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

// MockPriceStore is a mock implementation of PriceStore
type MockPriceStore struct {
	mock.Mock
}

func (m *MockPriceStore) SavePrice(ctx context.Context, snapshot models.PriceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockPriceStore) LoadPrice(ctx context.Context) (*models.PriceSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSnapshot), args.Error(1)
}

// MockPriceOracle is a mock implementation of PriceOracle
type MockPriceOracle struct {
	mock.Mock
}

func (m *MockPriceOracle) FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ReadBalance(ctx context.Context, wallet models.Wallet) (decimal.Decimal, error) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) SubmitTransfer(ctx context.Context, wallet models.Wallet, destination string, amount decimal.Decimal, memo string) error {
	args := m.Called(ctx, wallet, destination, amount, memo)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accountRepo  AccountRepository
	todoRepo     TodoRepository
	questLogRepo QuestLogRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, todoRepo TodoRepository, questLogRepo QuestLogRepository, eventBus EventPublisher) {
	m.accountRepo = accountRepo
	m.todoRepo = todoRepo
	m.questLogRepo = questLogRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) TodoRepository() TodoRepository {
	return m.todoRepo
}

func (m *MockUnitOfWork) QuestLogRepository() QuestLogRepository {
	return m.questLogRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
