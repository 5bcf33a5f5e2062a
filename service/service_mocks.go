package service

import (
	"context"
	"time"

	"borrowbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBorrowService is a mock implementation of BorrowService
type MockBorrowService struct {
	mock.Mock
}

func (m *MockBorrowService) Borrow(ctx context.Context, account *models.Account, amount decimal.Decimal, day time.Time) (*models.Todo, error) {
	args := m.Called(ctx, account, amount, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Todo), args.Error(1)
}

// MockCheckinService is a mock implementation of CheckinService
type MockCheckinService struct {
	mock.Mock
}

func (m *MockCheckinService) Checkin(ctx context.Context, account *models.Account, day time.Time) error {
	args := m.Called(ctx, account, day)
	return args.Error(0)
}
