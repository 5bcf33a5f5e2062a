package service

import "context"

// Outcome labels shared by the schedulers and the transfer queue
const (
	OutcomeSuccess   = "success"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
	OutcomeExhausted = "exhausted"
)

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) RecordAccountOutcome(context.Context, string, string) {}
func (NoopMetrics) RecordTransferAttempt(context.Context, string)        {}
func (NoopMetrics) RecordPricePoll(context.Context, string)              {}
