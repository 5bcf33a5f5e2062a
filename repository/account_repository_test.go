package repository

import (
	"context"
	"testing"
	"time"

	"borrowbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CountAndList(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	today := testutil.Day(2024, 5, 10)
	yesterday := testutil.Day(2024, 5, 9)
	borrowedAt := today.Add(13 * time.Hour)

	// Three processed today, one processed yesterday, two fresh, one human
	for i := int64(1); i <= 3; i++ {
		a := testutil.CreateTestAccount(100 + i)
		a.BorrowAt = &borrowedAt
		a.BorrowDate = &today
		a.CheckinDate = &today
		testutil.SeedAccount(t, testDB.DB, a)
	}
	stale := testutil.CreateTestAccount(200)
	stale.CheckinDate = &yesterday
	testutil.SeedAccount(t, testDB.DB, stale)

	fresh1 := testutil.SeedAccount(t, testDB.DB, testutil.CreateTestAccount(301))
	fresh2 := testutil.SeedAccount(t, testDB.DB, testutil.CreateTestAccount(302))

	human := testutil.CreateTestAccount(400)
	human.IsBot = false
	testutil.SeedAccount(t, testDB.DB, human)

	t.Run("counts only bots marked today", func(t *testing.T) {
		borrowed, err := repo.CountBorrowedOn(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 3, borrowed)

		checkedIn, err := repo.CountCheckedInOn(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 3, checkedIn)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		borrowed, err := repo.CountBorrowedOn(ctx, today.Add(18*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 3, borrowed)
	})

	t.Run("borrow candidates respect quota", func(t *testing.T) {
		// max 5 per day with 3 already processed leaves 2 slots
		accounts, err := repo.ListBorrowCandidates(ctx, today, 5-3)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, stale.ID, accounts[0].ID)
		assert.Equal(t, fresh1.ID, accounts[1].ID)
	})

	t.Run("borrow candidates exclude accounts that ever borrowed", func(t *testing.T) {
		accounts, err := repo.ListBorrowCandidates(ctx, today, 100)
		require.NoError(t, err)

		ids := make([]int64, 0, len(accounts))
		for _, a := range accounts {
			ids = append(ids, a.ID)
		}
		assert.Equal(t, []int64{stale.ID, fresh1.ID, fresh2.ID}, ids)
	})

	t.Run("checkin candidates include accounts dated another day", func(t *testing.T) {
		accounts, err := repo.ListCheckinCandidates(ctx, today, 100)
		require.NoError(t, err)
		require.Len(t, accounts, 3)
		assert.Equal(t, stale.ID, accounts[0].ID)
		require.NotNil(t, accounts[0].CheckinDate)
		assert.True(t, accounts[0].CheckinDate.Equal(yesterday))
		assert.Equal(t, "EQTestWallet200", accounts[0].Wallet.Address)
	})

	t.Run("non-positive limit selects nothing", func(t *testing.T) {
		accounts, err := repo.ListBorrowCandidates(ctx, today, 0)
		require.NoError(t, err)
		assert.Empty(t, accounts)

		accounts, err = repo.ListCheckinCandidates(ctx, today, -2)
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})
}

func TestAccountRepository_MarkBorrowing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.SeedAccount(t, testDB.DB, testutil.CreateTestAccount(1))
	day := testutil.Day(2024, 5, 10)
	now := day.Add(14 * time.Hour)

	changed, err := repo.MarkBorrowing(ctx, account.ID, now, now.Add(5*time.Minute), day)
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsBorrowing)
	require.NotNil(t, stored.BorrowDate)
	assert.True(t, stored.BorrowDate.Equal(day))
	require.NotNil(t, stored.BorrowEstimateAt)
	assert.True(t, stored.BorrowEstimateAt.Equal(now.Add(5*time.Minute)))

	t.Run("second mark has no effect", func(t *testing.T) {
		changed, err := repo.MarkBorrowing(ctx, account.ID, now, now, day)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("lock reports borrowing state", func(t *testing.T) {
		isBorrowing, err := repo.LockBorrowState(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, isBorrowing)
	})

	t.Run("lock on missing account fails", func(t *testing.T) {
		_, err := repo.LockBorrowState(ctx, 999999)
		assert.Error(t, err)
	})
}

func TestAccountRepository_MarkCheckedIn(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.SeedAccount(t, testDB.DB, testutil.CreateTestAccount(1))
	day := testutil.Day(2024, 5, 10)

	changed, err := repo.MarkCheckedIn(ctx, account.ID, day.Add(13*time.Hour), day)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkCheckedIn(ctx, account.ID, day.Add(15*time.Hour), day)
	require.NoError(t, err)
	assert.False(t, changed, "at most one checkin per day")

	changed, err = repo.MarkCheckedIn(ctx, account.ID, day.Add(37*time.Hour), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, changed, "next day is a new checkin")
}

func TestAccountRepository_GetByIDMissing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)

	account, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, account)
}
