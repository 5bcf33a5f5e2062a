package service

import (
	"context"
	"sync"
	"time"

	"borrowbot/events"
	"borrowbot/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTransferMaxAttempts = 4
	DefaultTransferRetryDelay  = 5 * time.Second
)

// TransferJob is one outbound transfer waiting in the queue
type TransferJob struct {
	ID          string
	Wallet      models.Wallet
	Destination string
	Amount      decimal.Decimal
	Memo        string
}

// TransferFuture resolves once its job succeeded or exhausted its attempts
type TransferFuture struct {
	JobID string
	done  chan struct{}
	err   error
}

// Done is closed when the job has finished
func (f *TransferFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes or ctx is done. Giving up on the wait does not
// cancel the job.
func (f *TransferFuture) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *TransferFuture) resolve(err error) {
	f.err = err
	close(f.done)
}

type queuedTransfer struct {
	job    TransferJob
	future *TransferFuture
}

// TransferQueue executes transfers one at a time in submission order. Each wallet
// transfer consumes a sequence number, so at most one transfer may be in flight.
type TransferQueue struct {
	ctx         context.Context
	ledger      Ledger
	publisher   EventPublisher
	metrics     Metrics
	maxAttempts int
	retryDelay  time.Duration

	mu      sync.Mutex
	pending []*queuedTransfer
	running bool
	idle    *sync.Cond
}

// NewTransferQueue creates a queue with the default retry policy. The worker stops
// retrying once ctx is cancelled.
func NewTransferQueue(ctx context.Context, ledger Ledger, publisher EventPublisher, metrics Metrics) *TransferQueue {
	return NewTransferQueueWithPolicy(ctx, ledger, publisher, metrics, DefaultTransferMaxAttempts, DefaultTransferRetryDelay)
}

// NewTransferQueueWithPolicy creates a queue with an explicit attempt budget and retry delay
func NewTransferQueueWithPolicy(ctx context.Context, ledger Ledger, publisher EventPublisher, metrics Metrics, maxAttempts int, retryDelay time.Duration) *TransferQueue {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	q := &TransferQueue{
		ctx:         ctx,
		ledger:      ledger,
		publisher:   publisher,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Submit appends a job and starts the worker if none is active
func (q *TransferQueue) Submit(job TransferJob) *TransferFuture {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	future := &TransferFuture{JobID: job.ID, done: make(chan struct{})}

	q.mu.Lock()
	q.pending = append(q.pending, &queuedTransfer{job: job, future: future})
	queued := len(q.pending)
	startWorker := !q.running
	q.running = true
	q.mu.Unlock()

	log.WithFields(log.Fields{
		"jobID":       job.ID,
		"destination": job.Destination,
		"amount":      job.Amount.String(),
		"queued":      queued,
	}).Debug("Transfer job queued")

	if startWorker {
		go q.work()
	}
	return future
}

// Len returns the number of jobs not yet started
func (q *TransferQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// WaitIdle blocks until the queue is empty and the worker has exited
func (q *TransferQueue) WaitIdle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.running {
		q.idle.Wait()
	}
}

func (q *TransferQueue) work() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		next.future.resolve(q.execute(next.job))
	}
}

func (q *TransferQueue) execute(job TransferJob) error {
	logger := log.WithFields(log.Fields{
		"jobID":       job.ID,
		"from":        job.Wallet.Address,
		"destination": job.Destination,
		"amount":      job.Amount.String(),
		"memo":        job.Memo,
	})

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		attempts = attempt
		lastErr = q.ledger.SubmitTransfer(q.ctx, job.Wallet, job.Destination, job.Amount, job.Memo)
		if lastErr == nil {
			q.metrics.RecordTransferAttempt(q.ctx, OutcomeSuccess)
			logger.WithField("attempt", attempt).Info("Transfer submitted")
			q.publish(events.TransferCompletedEvent{
				JobID:       job.ID,
				From:        job.Wallet.Address,
				Destination: job.Destination,
				Amount:      job.Amount,
				Memo:        job.Memo,
				Attempts:    attempt,
			})
			return nil
		}

		q.metrics.RecordTransferAttempt(q.ctx, OutcomeFailed)
		logger.WithFields(log.Fields{
			"attempt":     attempt,
			"maxAttempts": q.maxAttempts,
			"error":       lastErr,
		}).Warn("Transfer attempt failed")

		if attempt == q.maxAttempts {
			break
		}
		if err := Sleep(q.ctx, q.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	q.metrics.RecordTransferAttempt(q.ctx, OutcomeExhausted)
	logger.WithFields(log.Fields{
		"attempts": attempts,
		"error":    lastErr,
	}).Error("Transfer gave up")
	q.publish(events.TransferFailedEvent{
		JobID:       job.ID,
		From:        job.Wallet.Address,
		Destination: job.Destination,
		Amount:      job.Amount,
		Memo:        job.Memo,
		Attempts:    attempts,
		Error:       lastErr.Error(),
	})
	return lastErr
}

func (q *TransferQueue) publish(event events.Event) {
	if q.publisher != nil {
		q.publisher.Publish(event)
	}
}
