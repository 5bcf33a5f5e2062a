package application

import (
	"context"
	"errors"
	"time"

	"borrowbot/models"
	"borrowbot/service"

	log "github.com/sirupsen/logrus"
)

// SchedulerConfig holds the timing of a DailyBatchScheduler
type SchedulerConfig struct {
	// DayResetHour is the UTC hour at which a new scheduling day starts
	DayResetHour int

	// PausedRetry is the wait before re-checking a paused run state
	PausedRetry time.Duration

	// NoPriceRetry is the wait before re-checking for a known price
	NoPriceRetry time.Duration

	// Pace returns the delay after each attempted account
	Pace func() time.Duration

	// CycleSleep returns the delay between two cycles
	CycleSleep func() time.Duration
}

// DefaultSchedulerConfig returns the production timing
func DefaultSchedulerConfig(dayResetHour int) SchedulerConfig {
	return SchedulerConfig{
		DayResetHour: dayResetHour,
		PausedRetry:  time.Second,
		NoPriceRetry: 4 * time.Second,
		Pace:         func() time.Duration { return service.JitterMinutes(3, 6) },
		CycleSleep:   func() time.Duration { return service.JitterMinutes(60, 179) },
	}
}

// CycleReport summarizes one scheduling cycle
type CycleReport struct {
	Day       time.Time
	Remaining int
	Selected  int
	Succeeded int
	Skipped   int
	Failed    int
}

// DailyBatchScheduler selects a quota-bounded batch of accounts once per cycle and drives
// them one at a time through its pipeline
type DailyBatchScheduler struct {
	pipeline Pipeline
	settings service.SettingsView
	prices   service.PriceView
	metrics  service.Metrics
	cfg      SchedulerConfig
	runs     CycleRunStore
	now      func() time.Time
}

// NewDailyBatchScheduler creates a scheduler for pipeline
func NewDailyBatchScheduler(
	pipeline Pipeline,
	settings service.SettingsView,
	prices service.PriceView,
	metrics service.Metrics,
	cfg SchedulerConfig,
) *DailyBatchScheduler {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &DailyBatchScheduler{
		pipeline: pipeline,
		settings: settings,
		prices:   prices,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithRunLog makes Run persist every completed cycle to store
func (s *DailyBatchScheduler) WithRunLog(store CycleRunStore) *DailyBatchScheduler {
	s.runs = store
	return s
}

// Run repeats cycles until ctx is cancelled
func (s *DailyBatchScheduler) Run(ctx context.Context) error {
	log.WithField("pipeline", s.pipeline.Name()).Info("Daily batch scheduler started")

	for {
		startedAt := s.now()
		report, err := s.RunCycle(ctx)
		if err != nil {
			log.WithField("pipeline", s.pipeline.Name()).Info("Daily batch scheduler stopped")
			return err
		}

		wait := s.cfg.CycleSleep()
		s.recordCycle(ctx, report, startedAt, s.now(), wait)
		log.WithFields(log.Fields{
			"pipeline":  s.pipeline.Name(),
			"day":       report.Day.Format(time.DateOnly),
			"selected":  report.Selected,
			"succeeded": report.Succeeded,
			"skipped":   report.Skipped,
			"failed":    report.Failed,
			"nextCycle": wait,
		}).Info("Cycle finished")

		if err := service.Sleep(ctx, wait); err != nil {
			log.WithField("pipeline", s.pipeline.Name()).Info("Daily batch scheduler stopped")
			return err
		}
	}
}

// RunCycle computes the remaining quota, selects a batch and processes it. Only context
// cancellation is returned as an error; everything else is logged and counted.
func (s *DailyBatchScheduler) RunCycle(ctx context.Context) (CycleReport, error) {
	day := service.SchedulingDay(s.now(), s.cfg.DayResetHour)
	report := CycleReport{Day: day}

	logger := log.WithFields(log.Fields{
		"pipeline": s.pipeline.Name(),
		"day":      day.Format(time.DateOnly),
	})

	settings := s.settings.Snapshot()
	if settings == nil {
		logger.Warn("No settings snapshot, skipping cycle")
		return report, ctx.Err()
	}

	processed, err := s.pipeline.CountProcessed(ctx, day)
	if err != nil {
		logger.WithError(err).Error("Failed to count processed accounts")
		return report, ctx.Err()
	}

	report.Remaining = s.pipeline.DailyLimit(settings) - processed
	if report.Remaining <= 0 {
		logger.WithField("processed", processed).Info("Daily quota reached")
		return report, nil
	}

	batch, err := s.pipeline.SelectBatch(ctx, day, report.Remaining)
	if err != nil {
		logger.WithError(err).Error("Failed to select batch")
		return report, ctx.Err()
	}
	report.Selected = len(batch)

	logger.WithFields(log.Fields{
		"processed": processed,
		"remaining": report.Remaining,
		"selected":  report.Selected,
	}).Info("Cycle started")

	for _, account := range batch {
		if err := s.awaitGate(ctx); err != nil {
			return report, err
		}

		err := s.pipeline.Process(ctx, account, day, s.settings.Snapshot())
		outcome := classifyOutcome(err)
		s.metrics.RecordAccountOutcome(ctx, s.pipeline.Name(), outcome)

		accountLogger := logger.WithFields(log.Fields{
			"accountID": account.ID,
			"teleID":    account.TeleID,
			"outcome":   outcome,
		})

		switch outcome {
		case service.OutcomeSuccess:
			report.Succeeded++
			accountLogger.Info("Account processed")
		case service.OutcomeSkipped:
			report.Skipped++
			accountLogger.WithError(err).Info("Account skipped")
			// Nothing was attempted, move on without pacing
			continue
		case service.OutcomeRejected, service.OutcomeConflict:
			report.Skipped++
			accountLogger.WithError(err).Warn("Account not processed")
		default:
			report.Failed++
			accountLogger.WithError(err).Error("Account failed")
		}

		if err := service.Sleep(ctx, s.cfg.Pace()); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *DailyBatchScheduler) recordCycle(ctx context.Context, report CycleReport, startedAt, finishedAt time.Time, nextCycle time.Duration) {
	if s.runs == nil {
		return
	}

	run := &models.CycleRun{
		Pipeline:   s.pipeline.Name(),
		RunDay:     report.Day,
		Remaining:  report.Remaining,
		Selected:   report.Selected,
		Succeeded:  report.Succeeded,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		ExecutionSummary: map[string]any{
			"duration_ms":        finishedAt.Sub(startedAt).Milliseconds(),
			"next_cycle_minutes": nextCycle.Minutes(),
		},
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.WithFields(log.Fields{
			"pipeline": s.pipeline.Name(),
			"error":    err,
		}).Warn("Failed to record cycle run")
	}
}

// awaitGate blocks until the run state is running and a price is known. It re-checks
// both on every wake-up and never gives up before ctx is done.
func (s *DailyBatchScheduler) awaitGate(ctx context.Context) error {
	waitingFor := ""
	for {
		var reason string
		var wait time.Duration
		if !s.settings.IsRunning() {
			reason, wait = "paused", s.cfg.PausedRetry
		} else if _, ok := s.prices.CurrentPrice(); !ok {
			reason, wait = "no price", s.cfg.NoPriceRetry
		} else {
			if waitingFor != "" {
				log.WithField("pipeline", s.pipeline.Name()).Info("Gate open, resuming")
			}
			return nil
		}

		if reason != waitingFor {
			log.WithFields(log.Fields{
				"pipeline": s.pipeline.Name(),
				"reason":   reason,
			}).Info("Waiting at gate")
			waitingFor = reason
		}

		if err := service.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func classifyOutcome(err error) string {
	switch {
	case err == nil:
		return service.OutcomeSuccess
	case errors.Is(err, service.ErrBalanceTooLow):
		return service.OutcomeSkipped
	case errors.Is(err, service.ErrInvalidAmount):
		return service.OutcomeRejected
	case errors.Is(err, service.ErrAlreadyBorrowing),
		errors.Is(err, service.ErrTodoNotInserted),
		errors.Is(err, service.ErrAccountNotUpdated),
		errors.Is(err, service.ErrQuestLogNotInserted):
		return service.OutcomeConflict
	default:
		return service.OutcomeFailed
	}
}
