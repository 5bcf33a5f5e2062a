package models

import (
	"time"
)

// QuestLogType tags the kind of reward event
type QuestLogType string

const (
	QuestLogTypeDaily QuestLogType = "quest/daily"
)

const (
	DailyQuestID          = "daily_quest"
	QuestBotBorrowCheckin = "bot_borrow_checkin"
)

// QuestLog is an append-only record of a completed checkin reward
type QuestLog struct {
	ID        int64        `db:"id"`
	LogType   QuestLogType `db:"log_type"`
	AccountID int64        `db:"account_id"`
	QuestID   string       `db:"quest_id"`
	Quest     string       `db:"quest"`
	Rewards   string       `db:"rewards"`
	CreatedAt time.Time    `db:"created_at"`
}
