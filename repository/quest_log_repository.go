package repository

import (
	"context"
	"fmt"

	"borrowbot/database"
	"borrowbot/models"
)

// QuestLogRepository implements the QuestLogRepository interface
type QuestLogRepository struct {
	q queryable
}

// NewQuestLogRepository creates a new quest log repository
func NewQuestLogRepository(db *database.DB) *QuestLogRepository {
	return &QuestLogRepository{q: db.Pool}
}

func newQuestLogRepositoryWithTx(tx queryable) *QuestLogRepository {
	return &QuestLogRepository{q: tx}
}

// Insert appends a quest log entry
func (r *QuestLogRepository) Insert(ctx context.Context, entry *models.QuestLog) error {
	query := `
		INSERT INTO quest_logs (log_type, account_id, quest_id, quest, rewards)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.LogType,
		entry.AccountID,
		entry.QuestID,
		entry.Quest,
		entry.Rewards,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quest log for account %d: %w", entry.AccountID, err)
	}

	return nil
}

// ListByAccount returns the quest logs of an account, oldest first
func (r *QuestLogRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.QuestLog, error) {
	query := `
		SELECT id, log_type, account_id, quest_id, quest, rewards, created_at
		FROM quest_logs
		WHERE account_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest logs for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var logs []*models.QuestLog
	for rows.Next() {
		var entry models.QuestLog
		if err := rows.Scan(
			&entry.ID,
			&entry.LogType,
			&entry.AccountID,
			&entry.QuestID,
			&entry.Quest,
			&entry.Rewards,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quest log: %w", err)
		}
		logs = append(logs, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quest logs: %w", err)
	}

	return logs, nil
}
