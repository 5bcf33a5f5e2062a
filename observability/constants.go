package observability

// Metric names
const (
	AccountsProcessedTotal = "borrowbot_accounts_processed_total"
	TransferAttemptsTotal  = "borrowbot_transfer_attempts_total"
	PricePollsTotal        = "borrowbot_price_polls_total"
)

// Attribute keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)
