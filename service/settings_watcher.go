package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"borrowbot/models"

	log "github.com/sirupsen/logrus"
)

const (
	// SettingsChangedChannel is the NOTIFY channel raised by the system_settings trigger
	SettingsChangedChannel = "system_settings_changed"

	// resubscribeBackoff only applies when a subscription could not be established at all
	resubscribeBackoff = time.Second
)

// SettingsWatcher holds the current settings snapshot and replaces it whenever the
// settings row changes
type SettingsWatcher struct {
	repo       SettingsRepository
	subscriber SettingsSubscriber
	systemType string
	backoff    time.Duration

	snapshot atomic.Pointer[models.Settings]
}

// NewSettingsWatcher creates a watcher for the borrow bot settings row
func NewSettingsWatcher(repo SettingsRepository, subscriber SettingsSubscriber) *SettingsWatcher {
	return &SettingsWatcher{
		repo:       repo,
		subscriber: subscriber,
		systemType: models.SystemTypeBorrowBot,
		backoff:    resubscribeBackoff,
	}
}

// Load reads and validates the settings at startup. Any error is fatal.
func (w *SettingsWatcher) Load(ctx context.Context) error {
	settings, err := w.fetch(ctx)
	if err != nil {
		return err
	}

	w.snapshot.Store(settings)
	logSettings(settings, "Settings loaded")
	return nil
}

// Snapshot returns the current settings. It is nil only before Load succeeds.
func (w *SettingsWatcher) Snapshot() *models.Settings {
	return w.snapshot.Load()
}

// IsRunning reports whether the schedulers may do account-mutating work
func (w *SettingsWatcher) IsRunning() bool {
	return w.snapshot.Load().IsRunning()
}

func (w *SettingsWatcher) fetch(ctx context.Context) (*models.Settings, error) {
	settings, err := w.repo.Get(ctx, w.systemType)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("%w: no %s row", ErrSettingsNotConfigured, w.systemType)
	}
	if missing := settings.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrSettingsNotConfigured, strings.Join(missing, ", "))
	}
	return settings, nil
}

// reload swaps in fresh settings, keeping the previous snapshot on any failure
func (w *SettingsWatcher) reload(ctx context.Context) {
	settings, err := w.fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Settings reload failed, keeping previous snapshot")
		return
	}

	w.snapshot.Store(settings)
	logSettings(settings, "Settings changed")
}

// Run keeps a change subscription alive until ctx is cancelled. Every (re)subscription
// reloads once so that changes made while unsubscribed are not lost.
func (w *SettingsWatcher) Run(ctx context.Context) error {
	log.WithField("channel", SettingsChangedChannel).Info("Settings watcher started")

	for {
		subscribed := false
		err := w.subscriber.Listen(ctx, SettingsChangedChannel,
			func() {
				subscribed = true
				w.reload(ctx)
			},
			func(payload string) {
				if payload != "" && payload != w.systemType {
					return
				}
				w.reload(ctx)
			},
		)

		if ctx.Err() != nil {
			log.Info("Settings watcher stopped")
			return ctx.Err()
		}

		log.WithFields(log.Fields{
			"error":      err,
			"subscribed": subscribed,
		}).Warn("Settings subscription ended, resubscribing")

		if !subscribed {
			if err := Sleep(ctx, w.backoff); err != nil {
				return err
			}
		}
	}
}

func logSettings(settings *models.Settings, msg string) {
	state := "stopped"
	if settings.IsRunning() {
		state = "running"
	}
	log.WithFields(log.Fields{
		"state":                   state,
		"maxBorrowAccountPerDay":  settings.MaxBorrowAccountPerDay,
		"maxCheckinAccountPerDay": settings.MaxCheckinAccountPerDay,
		"borrowMathFloorPercent":  settings.BorrowMathFloorPercent.String(),
	}).Info(msg)
}
