package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"borrowbot/database"
	"borrowbot/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestAccount creates a bot account with default values
func CreateTestAccount(teleID int64) *models.Account {
	return &models.Account{
		TeleID: teleID,
		Name:   fmt.Sprintf("bot-%d", teleID),
		Wallet: models.Wallet{
			Address:    fmt.Sprintf("EQTestWallet%d", teleID),
			PrivateKey: "00",
		},
		IsBot: true,
	}
}

// CreateTestSettings creates a running settings snapshot with the given daily caps
func CreateTestSettings(maxBorrow, maxCheckin int) *models.Settings {
	return &models.Settings{
		SystemType:              models.SystemTypeBorrowBot,
		State:                   models.RunStateRunning,
		MaxBorrowAccountPerDay:  maxBorrow,
		MaxCheckinAccountPerDay: maxCheckin,
		BorrowMathFloorPercent:  decimal.NewFromInt(90),
	}
}

// SeedAccount inserts an account including its day markers, bypassing the repository
// so that tests can start from any state
func SeedAccount(t *testing.T, db *database.DB, account *models.Account) *models.Account {
	t.Helper()

	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), `
			INSERT INTO accounts (tele_id, name, wallet_address, wallet_private_key, is_bot,
			                      is_borrowing, borrow_at, borrow_date, checkin_at, checkin_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`,
			account.TeleID,
			account.Name,
			account.Wallet.Address,
			account.Wallet.PrivateKey,
			account.IsBot,
			account.IsBorrowing,
			account.BorrowAt,
			account.BorrowDate,
			account.CheckinAt,
			account.CheckinDate,
		).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	})
	require.NoError(t, err)

	return account
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
