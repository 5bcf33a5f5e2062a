package service

import (
	"context"
	"fmt"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	log "github.com/sirupsen/logrus"
)

// checkinService implements the CheckinService interface
type checkinService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewCheckinService creates a new checkin service
func NewCheckinService(uowFactory UnitOfWorkFactory) CheckinService {
	return &checkinService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Checkin appends the daily quest log and marks the account checked in for day
func (s *checkinService) Checkin(ctx context.Context, account *models.Account, day time.Time) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry := &models.QuestLog{
		LogType:   models.QuestLogTypeDaily,
		AccountID: account.ID,
		QuestID:   models.DailyQuestID,
		Quest:     models.QuestBotBorrowCheckin,
		Rewards:   models.QuestBotBorrowCheckin,
	}
	if err := uow.QuestLogRepository().Insert(ctx, entry); err != nil {
		return fmt.Errorf("%w: %w", ErrQuestLogNotInserted, err)
	}

	updated, err := uow.AccountRepository().MarkCheckedIn(ctx, account.ID, s.now().UTC(), day)
	if err != nil {
		return err
	}
	if !updated {
		return ErrAccountNotUpdated
	}

	uow.EventBus().Publish(events.CheckinCommittedEvent{
		AccountID: account.ID,
		TeleID:    account.TeleID,
		Day:       day,
	})

	if err := uow.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"teleID":    account.TeleID,
		"day":       day.Format(time.DateOnly),
	}).Info("Checkin committed")

	return nil
}
