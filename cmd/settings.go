package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"borrowbot/config"
	"borrowbot/database"
	"borrowbot/models"
	"borrowbot/repository"
	"borrowbot/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const settingsUsage = "usage: borrowbot settings [show | pause | resume | init <max-borrow> <max-checkin> <floor-percent>]"

// Settings handles the operator settings subcommand. Every write notifies running bots.
func Settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(settingsUsage)
	}

	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewSettingsRepository(db)
	current, err := repo.Get(ctx, models.SystemTypeBorrowBot)
	if err != nil {
		return err
	}

	next, err := applySettingsCommand(current, args)
	if err != nil {
		return err
	}
	if next == nil {
		printSettings(current)
		log.WithField("nextDayStartsAt", service.GetNextResetTime(cfg.DayResetHour)).Info("Scheduling day")
		return printCycleRuns(ctx, repository.NewCycleRunRepository(db), service.SchedulingDay(time.Now(), cfg.DayResetHour))
	}

	if err := repo.Save(ctx, next); err != nil {
		return err
	}
	printSettings(next)
	return nil
}

// applySettingsCommand returns the settings to save, or nil for a read-only command
func applySettingsCommand(current *models.Settings, args []string) (*models.Settings, error) {
	switch args[0] {
	case "show":
		if current == nil {
			return nil, fmt.Errorf("settings %s are not configured", models.SystemTypeBorrowBot)
		}
		return nil, nil

	case "pause", "resume":
		if current == nil {
			return nil, fmt.Errorf("settings %s are not configured, run init first", models.SystemTypeBorrowBot)
		}
		next := *current
		next.State = models.RunStateStopped
		if args[0] == "resume" {
			next.State = models.RunStateRunning
		}
		return &next, nil

	case "init":
		if len(args) != 4 {
			return nil, errors.New(settingsUsage)
		}
		maxBorrow, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid max-borrow %q: %w", args[1], err)
		}
		maxCheckin, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid max-checkin %q: %w", args[2], err)
		}
		floorPercent, err := decimal.NewFromString(args[3])
		if err != nil {
			return nil, fmt.Errorf("invalid floor-percent %q: %w", args[3], err)
		}

		next := &models.Settings{
			SystemType:              models.SystemTypeBorrowBot,
			State:                   models.RunStateStopped,
			MaxBorrowAccountPerDay:  maxBorrow,
			MaxCheckinAccountPerDay: maxCheckin,
			BorrowMathFloorPercent:  floorPercent,
		}
		if current != nil {
			next.State = current.State
		}
		if missing := next.MissingFields(); len(missing) > 0 {
			return nil, fmt.Errorf("invalid settings, missing %v", missing)
		}
		return next, nil

	default:
		return nil, fmt.Errorf("unknown settings command: %s", args[0])
	}
}

func printSettings(settings *models.Settings) {
	log.WithFields(log.Fields{
		"state":                       settings.State,
		"max_borrow_account_per_day":  settings.MaxBorrowAccountPerDay,
		"max_checkin_account_per_day": settings.MaxCheckinAccountPerDay,
		"borrow_math_floor_percent":   settings.BorrowMathFloorPercent.String(),
		"updated_at":                  settings.UpdatedAt,
	}).Info("Borrow bot settings")
}

// printCycleRuns logs the latest cycle and today's cycle count of each pipeline
func printCycleRuns(ctx context.Context, runs *repository.CycleRunRepository, day time.Time) error {
	for _, pipeline := range []string{"borrow", "checkin"} {
		latest, err := runs.GetLatest(ctx, pipeline)
		if err != nil {
			return err
		}
		today, err := runs.ListByDay(ctx, pipeline, day)
		if err != nil {
			return err
		}

		fields := log.Fields{
			"pipeline":    pipeline,
			"day":         day.Format(time.DateOnly),
			"cyclesToday": len(today),
		}
		if latest != nil {
			fields["lastStartedAt"] = latest.StartedAt
			fields["lastSucceeded"] = latest.Succeeded
			fields["lastSkipped"] = latest.Skipped
			fields["lastFailed"] = latest.Failed
		}
		log.WithFields(fields).Info("Scheduler activity")
	}
	return nil
}
