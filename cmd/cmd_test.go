package cmd

import (
	"testing"

	"borrowbot/config"
	"borrowbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := config.NewTestConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	require.NoError(t, ConfigureLogging(cfg))
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg.LogLevel = "loud"
	assert.Error(t, ConfigureLogging(cfg))

	cfg.LogLevel = "info"
	cfg.LogFormat = "xml"
	assert.Error(t, ConfigureLogging(cfg))
}

func TestApplySettingsCommand(t *testing.T) {
	current := &models.Settings{
		SystemType:              models.SystemTypeBorrowBot,
		State:                   models.RunStateRunning,
		MaxBorrowAccountPerDay:  5,
		MaxCheckinAccountPerDay: 8,
		BorrowMathFloorPercent:  decimal.NewFromInt(90),
	}

	t.Run("show is read-only", func(t *testing.T) {
		next, err := applySettingsCommand(current, []string{"show"})
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("pause and resume keep quotas", func(t *testing.T) {
		paused, err := applySettingsCommand(current, []string{"pause"})
		require.NoError(t, err)
		assert.Equal(t, models.RunStateStopped, paused.State)
		assert.Equal(t, 5, paused.MaxBorrowAccountPerDay)
		assert.Equal(t, models.RunStateRunning, current.State, "current snapshot is not mutated")

		resumed, err := applySettingsCommand(paused, []string{"resume"})
		require.NoError(t, err)
		assert.Equal(t, models.RunStateRunning, resumed.State)
	})

	t.Run("pause before init", func(t *testing.T) {
		_, err := applySettingsCommand(nil, []string{"pause"})
		assert.ErrorContains(t, err, "init")
	})

	t.Run("init starts stopped", func(t *testing.T) {
		next, err := applySettingsCommand(nil, []string{"init", "10", "20", "90"})
		require.NoError(t, err)
		assert.Equal(t, models.RunStateStopped, next.State)
		assert.Equal(t, 10, next.MaxBorrowAccountPerDay)
		assert.Equal(t, 20, next.MaxCheckinAccountPerDay)
		assert.True(t, decimal.NewFromInt(90).Equal(next.BorrowMathFloorPercent))
	})

	t.Run("init keeps the run state", func(t *testing.T) {
		next, err := applySettingsCommand(current, []string{"init", "1", "1", "50"})
		require.NoError(t, err)
		assert.Equal(t, models.RunStateRunning, next.State)
	})

	t.Run("init rejects zero quota", func(t *testing.T) {
		_, err := applySettingsCommand(nil, []string{"init", "0", "20", "90"})
		assert.ErrorContains(t, err, "max_borrow_account_per_day")
	})

	t.Run("init arity", func(t *testing.T) {
		_, err := applySettingsCommand(nil, []string{"init", "1"})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := applySettingsCommand(current, []string{"delete"})
		assert.ErrorContains(t, err, "unknown settings command")
	})
}
