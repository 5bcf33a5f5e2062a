package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"borrowbot/database"
	"borrowbot/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `
	id, tele_id, name, wallet_address, wallet_private_key, is_bot, is_borrowing,
	borrow_at, borrow_estimate_at, borrow_date, checkin_at, checkin_date,
	created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.TeleID,
		&a.Name,
		&a.Wallet.Address,
		&a.Wallet.PrivateKey,
		&a.IsBot,
		&a.IsBorrowing,
		&a.BorrowAt,
		&a.BorrowEstimateAt,
		&a.BorrowDate,
		&a.CheckinAt,
		&a.CheckinDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Create inserts a new account and fills in its generated fields
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (tele_id, name, wallet_address, wallet_private_key, is_bot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.TeleID,
		account.Name,
		account.Wallet.Address,
		account.Wallet.PrivateKey,
		account.IsBot,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account with tele ID %d: %w", account.TeleID, err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return account, nil
}

// CountBorrowedOn counts bot accounts whose borrow was recorded on the given scheduling day
func (r *AccountRepository) CountBorrowedOn(ctx context.Context, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE is_bot AND borrow_date = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, dateOnly(day)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count borrowed accounts for %s: %w", day.Format(time.DateOnly), err)
	}
	return count, nil
}

// CountCheckedInOn counts bot accounts that checked in on the given scheduling day
func (r *AccountRepository) CountCheckedInOn(ctx context.Context, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE is_bot AND checkin_date = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, dateOnly(day)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count checked-in accounts for %s: %w", day.Format(time.DateOnly), err)
	}
	return count, nil
}

// ListBorrowCandidates returns up to limit bot accounts that have never borrowed and
// were not marked on the given day, ordered by ID
func (r *AccountRepository) ListBorrowCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_bot
		  AND borrow_at IS NULL
		  AND borrow_date IS DISTINCT FROM $1
		ORDER BY id
		LIMIT $2
	`

	accounts, err := r.queryAccounts(ctx, query, dateOnly(day), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrow candidates: %w", err)
	}
	return accounts, nil
}

// ListCheckinCandidates returns up to limit bot accounts not yet checked in on the given day
func (r *AccountRepository) ListCheckinCandidates(ctx context.Context, day time.Time, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_bot
		  AND checkin_date IS DISTINCT FROM $1
		ORDER BY id
		LIMIT $2
	`

	accounts, err := r.queryAccounts(ctx, query, dateOnly(day), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkin candidates: %w", err)
	}
	return accounts, nil
}

// LockBorrowState locks the account row for the rest of the transaction and
// returns its current is_borrowing flag
func (r *AccountRepository) LockBorrowState(ctx context.Context, accountID int64) (bool, error) {
	query := `SELECT is_borrowing FROM accounts WHERE id = $1 FOR UPDATE`

	var isBorrowing bool
	err := r.q.QueryRow(ctx, query, accountID).Scan(&isBorrowing)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("account %d not found", accountID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	return isBorrowing, nil
}

// MarkBorrowing flips the account into the borrowing state. It reports false when the
// account was already borrowing or does not exist.
func (r *AccountRepository) MarkBorrowing(ctx context.Context, accountID int64, at, estimateAt, day time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET is_borrowing = TRUE,
		    borrow_at = $2,
		    borrow_estimate_at = $3,
		    borrow_date = $4,
		    updated_at = NOW()
		WHERE id = $1 AND is_borrowing = FALSE
	`

	result, err := r.q.Exec(ctx, query, accountID, at, estimateAt, dateOnly(day))
	if err != nil {
		return false, fmt.Errorf("failed to mark account %d as borrowing: %w", accountID, err)
	}
	return result.RowsAffected() == 1, nil
}

// MarkCheckedIn records the checkin for the given day. It reports false when the
// account already checked in that day.
func (r *AccountRepository) MarkCheckedIn(ctx context.Context, accountID int64, at, day time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET checkin_at = $2,
		    checkin_date = $3,
		    updated_at = NOW()
		WHERE id = $1 AND checkin_date IS DISTINCT FROM $3
	`

	result, err := r.q.Exec(ctx, query, accountID, at, dateOnly(day))
	if err != nil {
		return false, fmt.Errorf("failed to mark account %d as checked in: %w", accountID, err)
	}
	return result.RowsAffected() == 1, nil
}

// dateOnly truncates to midnight UTC so the value binds cleanly to a DATE column
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
