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

// SettingsRepository reads and writes the singleton system settings row
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// Get returns the settings row for the given system type, or nil when it does not exist
func (r *SettingsRepository) Get(ctx context.Context, systemType string) (*models.Settings, error) {
	query := `
		SELECT system_type, state, max_borrow_account_per_day, max_checkin_account_per_day,
		       borrow_math_floor_percent::text, updated_at
		FROM system_settings
		WHERE system_type = $1
	`

	var settings models.Settings
	var floorPercent string
	err := r.q.QueryRow(ctx, query, systemType).Scan(
		&settings.SystemType,
		&settings.State,
		&settings.MaxBorrowAccountPerDay,
		&settings.MaxCheckinAccountPerDay,
		&floorPercent,
		&settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings %s: %w", systemType, err)
	}

	settings.BorrowMathFloorPercent, err = decimal.NewFromString(floorPercent)
	if err != nil {
		return nil, fmt.Errorf("invalid borrow_math_floor_percent %q: %w", floorPercent, err)
	}

	return &settings, nil
}

// Save upserts the settings row. The table trigger notifies listeners of the change.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO system_settings (system_type, state, max_borrow_account_per_day,
		                             max_checkin_account_per_day, borrow_math_floor_percent)
		VALUES ($1, $2, $3, $4, $5::numeric)
		ON CONFLICT (system_type) DO UPDATE SET
			state = EXCLUDED.state,
			max_borrow_account_per_day = EXCLUDED.max_borrow_account_per_day,
			max_checkin_account_per_day = EXCLUDED.max_checkin_account_per_day,
			borrow_math_floor_percent = EXCLUDED.borrow_math_floor_percent,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		settings.SystemType,
		settings.State,
		settings.MaxBorrowAccountPerDay,
		settings.MaxCheckinAccountPerDay,
		settings.BorrowMathFloorPercent.String(),
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings %s: %w", settings.SystemType, err)
	}

	return nil
}
