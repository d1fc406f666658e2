package transfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/walletguard/walletd/pkg/config"
	"github.com/walletguard/walletd/pkg/domain"
	"github.com/walletguard/walletd/pkg/domain/events"
	"github.com/walletguard/walletd/pkg/eventbus"
)

// serverErrorMessage replaces unexpected failure details in the outbound
// notification. Internal errors are logged, never surfaced.
const serverErrorMessage = "Server error"

// Job is one independently schedulable transfer.
type Job struct {
	ID            uuid.UUID
	SenderID      int64
	ReceiverID    int64
	Amount        decimal.Decimal
	CommissionFee decimal.Decimal
}

// engine is the part of the transfer Service the processor needs.
type engine interface {
	Transfer(ctx context.Context, senderID, receiverID int64, amount, fee decimal.Decimal) (*domain.Transaction, error)
}

// Processor executes transfer jobs on a pool of workers. Each job gets up to
// MaxAttempts attempts with a per-attempt timeout and linear backoff between
// attempts. Domain errors terminate a job immediately; only transient
// infrastructure failures are retried. Every terminal failure emits exactly
// one transfer.failed notification.
type Processor struct {
	engine engine
	bus    eventbus.Bus
	cfg    config.Transfer
	logger *slog.Logger

	queue chan Job
	wg    sync.WaitGroup

	// mu guards closed and the queue channel's lifetime: Enqueue sends under
	// the read lock, Stop closes under the write lock, so the queue is never
	// closed while a sender is blocked on it.
	mu     sync.RWMutex
	closed bool
}

// NewProcessor creates a stopped processor; call Start to launch the workers.
func NewProcessor(e engine, bus eventbus.Bus, cfg config.Transfer, logger *slog.Logger) *Processor {
	return &Processor{
		engine: e,
		bus:    bus,
		cfg:    cfg,
		logger: logger.With("service", "transfer-processor"),
		queue:  make(chan Job, cfg.QueueSize),
	}
}

// Start launches the worker pool. ctx only scopes the work; draining is
// handled by Stop.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.queue {
				p.process(ctx, job)
			}
		}()
	}
}

// Enqueue schedules a transfer job. It blocks while the queue is full and
// fails once the processor has been stopped.
func (p *Processor) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return context.Canceled
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	p.queue <- job
	return nil
}

// Stop closes the intake and waits for in-flight jobs to drain. Senders
// blocked in Enqueue hold the read lock, and workers consume without it, so
// Stop waits for those sends to land before closing the queue.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Processor) process(ctx context.Context, job Job) {
	log := p.logger.With("job_id", job.ID, "sender_id", job.SenderID, "receiver_id", job.ReceiverID)

	var err error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		_, err = p.engine.Transfer(attemptCtx, job.SenderID, job.ReceiverID, job.Amount, job.CommissionFee)
		cancel()
		if err == nil {
			return
		}
		if domain.IsDomainErr(err) {
			break
		}
		log.Warn("transfer attempt failed", "attempt", attempt, "error", err)
		if attempt < p.cfg.MaxAttempts {
			time.Sleep(time.Duration(attempt) * p.cfg.Backoff)
		}
	}

	log.Error("transfer job failed", "error", err)
	failed := events.TransferFailed{
		ID:            uuid.New(),
		SenderID:      job.SenderID,
		ReceiverID:    job.ReceiverID,
		Amount:        job.Amount,
		CommissionFee: job.CommissionFee,
		Message:       failureMessage(err),
	}
	if pubErr := p.bus.Publish(ctx, failed); pubErr != nil {
		log.Error("failed to publish transfer.failed", "error", pubErr)
	}
}

// failureMessage picks the user-facing reason for a terminal failure: the
// domain error's own text, or a generic message for anything unexpected.
func failureMessage(err error) string {
	if domain.IsDomainErr(err) {
		return err.Error()
	}
	return serverErrorMessage
}
