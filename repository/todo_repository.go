package repository

import (
	"context"
	"errors"
	"fmt"

	"borrowbot/database"
	"borrowbot/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TodoRepository implements the TodoRepository interface
type TodoRepository struct {
	q queryable
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *database.DB) *TodoRepository {
	return &TodoRepository{q: db.Pool}
}

// newTodoRepositoryWithTx creates a new todo repository with a transaction
func newTodoRepositoryWithTx(tx queryable) *TodoRepository {
	return &TodoRepository{q: tx}
}

// InsertPendingIfAbsent inserts the todo unless a pending todo of the same type already
// exists for the account. It reports whether a row was inserted.
func (r *TodoRepository) InsertPendingIfAbsent(ctx context.Context, todo *models.Todo) (bool, error) {
	query := `
		INSERT INTO todos (todo_type, account_id, invoice_id, status, address, amount, onchain_amount, estimate_at)
		VALUES ($1, $2, $3, 'pending', $4, $5::numeric, $6::numeric, $7)
		ON CONFLICT (todo_type, account_id) WHERE status = 'pending' DO NOTHING
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query,
		todo.TodoType,
		todo.AccountID,
		todo.InvoiceID,
		todo.Address,
		todo.Amount.String(),
		todo.OnchainAmount.String(),
		todo.EstimateAt,
	).Scan(&todo.ID, &todo.Status, &todo.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert %s todo for account %d: %w", todo.TodoType, todo.AccountID, err)
	}

	return true, nil
}

// GetPendingByAccount returns the pending todo of the given type for an account, if any
func (r *TodoRepository) GetPendingByAccount(ctx context.Context, todoType models.TodoType, accountID int64) (*models.Todo, error) {
	query := `
		SELECT id, todo_type, account_id, invoice_id, status, address,
		       amount::text, onchain_amount::text, estimate_at, created_at
		FROM todos
		WHERE todo_type = $1 AND account_id = $2 AND status = 'pending'
	`

	var todo models.Todo
	var amount, onchainAmount string
	err := r.q.QueryRow(ctx, query, todoType, accountID).Scan(
		&todo.ID,
		&todo.TodoType,
		&todo.AccountID,
		&todo.InvoiceID,
		&todo.Status,
		&todo.Address,
		&amount,
		&onchainAmount,
		&todo.EstimateAt,
		&todo.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending %s todo for account %d: %w", todoType, accountID, err)
	}

	if todo.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid todo amount %q: %w", amount, err)
	}
	if todo.OnchainAmount, err = decimal.NewFromString(onchainAmount); err != nil {
		return nil, fmt.Errorf("invalid todo onchain amount %q: %w", onchainAmount, err)
	}

	return &todo, nil
}
