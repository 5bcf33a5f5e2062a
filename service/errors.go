package service

import "errors"

var (
	// ErrSettingsNotConfigured is fatal at startup: the settings row is missing or incomplete
	ErrSettingsNotConfigured = errors.New("system settings are not configured")

	// Precondition and race failures inside a transaction. Not retried within the same cycle.
	ErrAlreadyBorrowing    = errors.New("account is already borrowing")
	ErrTodoNotInserted     = errors.New("pending todo already exists")
	ErrAccountNotUpdated   = errors.New("account update had no effect")
	ErrQuestLogNotInserted = errors.New("quest log was not inserted")

	// Validation failures. The account is skipped without a transaction.
	ErrInvalidAmount = errors.New("computed amount is invalid")
	ErrBalanceTooLow = errors.New("balance below minimum")
)
