package queue

import (
	"context"
	"math"
	"sync"
	"time"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/metrics"
	"tiketbus/internal/utils"
)

// TransferProcessor is the strategy the queue delegates a drained batch to.
// The settlement service implements it against the payment provider.
type TransferProcessor interface {
	ProcessBatch(ctx context.Context, batch []models.CommissionTransfer) error
}

// TransferQueue batches commission transfers and retries failed batches with
// exponential backoff per item. Enqueue never blocks the caller. Transfers
// past MaxRetries are dropped and surfaced through OnPermanentFailure; that
// loss is the one tolerated outcome, and it is never silent.
type TransferQueue struct {
	Processor     TransferProcessor
	BatchSize     int
	FlushInterval time.Duration
	MaxRetries    int
	RetryBase     time.Duration

	// OnPermanentFailure receives transfers dropped past the retry budget.
	OnPermanentFailure func(models.CommissionTransfer)

	// AfterFunc schedules delayed re-enqueues; replaced in tests.
	AfterFunc func(d time.Duration, fn func()) *time.Timer

	mu      sync.Mutex
	pending []models.CommissionTransfer

	flushMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewTransferQueue(processor TransferProcessor, batchSize int, interval time.Duration, maxRetries int, retryBase time.Duration) *TransferQueue {
	q := &TransferQueue{
		Processor:     processor,
		BatchSize:     batchSize,
		FlushInterval: interval,
		MaxRetries:    maxRetries,
		RetryBase:     retryBase,
		AfterFunc:     time.AfterFunc,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go q.loop()
	return q
}

// Enqueue adds a transfer, stamping the enqueue time on first entry.
func (q *TransferQueue) Enqueue(t models.CommissionTransfer) {
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = utils.NowUTC()
	}

	q.mu.Lock()
	q.pending = append(q.pending, t)
	full := len(q.pending) >= q.BatchSize
	metrics.TransferQueueDepth.Set(float64(len(q.pending)))
	q.mu.Unlock()

	if full {
		go q.Flush()
	}
}

// Flush drains up to BatchSize transfers and hands them to the processor.
// A flush in progress makes concurrent calls (and timer ticks) no-ops.
func (q *TransferQueue) Flush() {
	if !q.flushMu.TryLock() {
		return
	}
	defer q.flushMu.Unlock()

	batch := q.take()
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := q.Processor.ProcessBatch(ctx, batch)
	cancel()
	if err == nil {
		return
	}

	utils.LogEvent("", "transfer", "flush", "batch failed: "+err.Error())
	for _, t := range batch {
		q.scheduleRetry(t)
	}
}

// scheduleRetry re-enqueues one transfer after base*2^(retryCount-1), or
// drops it past the retry budget.
func (q *TransferQueue) scheduleRetry(t models.CommissionTransfer) {
	t.RetryCount++
	if t.RetryCount > q.MaxRetries {
		metrics.TransferPermanentFailuresTotal.Inc()
		utils.LogEvent("", "transfer", "drop", "transfer "+t.ID+" ref="+t.Reference+" exceeded retry budget")
		if q.OnPermanentFailure != nil {
			q.OnPermanentFailure(t)
		}
		return
	}

	delay := time.Duration(float64(q.RetryBase) * math.Pow(2, float64(t.RetryCount-1)))
	metrics.TransferRetriesTotal.Inc()
	transfer := t
	q.AfterFunc(delay, func() {
		q.Enqueue(transfer)
	})
}

func (q *TransferQueue) take() []models.CommissionTransfer {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.pending)
	if n == 0 {
		return nil
	}
	if n > q.BatchSize {
		n = q.BatchSize
	}
	batch := make([]models.CommissionTransfer, n)
	copy(batch, q.pending[:n])
	q.pending = append(q.pending[:0:0], q.pending[n:]...)
	metrics.TransferQueueDepth.Set(float64(len(q.pending)))
	return batch
}

// Depth reports the number of queued transfers.
func (q *TransferQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop terminates the flush loop and drains everything already queued.
// Flush moves at most one batch, so keep flushing until the queue is empty;
// failed items leave via their retry timers, not the pending slice.
func (q *TransferQueue) Stop() {
	q.once.Do(func() { close(q.stop) })
	<-q.done
	for {
		q.Flush()
		if q.Depth() == 0 {
			return
		}
	}
}

func (q *TransferQueue) loop() {
	defer close(q.done)
	ticker := time.NewTicker(q.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			q.Flush()
		case <-q.stop:
			return
		}
	}
}
