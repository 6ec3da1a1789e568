package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tiketbus/internal/domain/models"
)

type fakeProcessor struct {
	mu      sync.Mutex
	batches [][]models.CommissionTransfer
	err     error
}

func (p *fakeProcessor) ProcessBatch(ctx context.Context, batch []models.CommissionTransfer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]models.CommissionTransfer, len(batch))
	copy(cp, batch)
	p.batches = append(p.batches, cp)
	return p.err
}

// immediateAfter runs scheduled retries synchronously and records delays.
func immediateAfter(delays *[]time.Duration) func(time.Duration, func()) *time.Timer {
	return func(d time.Duration, fn func()) *time.Timer {
		*delays = append(*delays, d)
		fn()
		return nil
	}
}

func newTestQueue(p TransferProcessor, batchSize, maxRetries int) *TransferQueue {
	// long interval keeps the background ticker out of the test
	return NewTransferQueue(p, batchSize, time.Hour, maxRetries, 2*time.Second)
}

func TestTransferQueueFlushSuccess(t *testing.T) {
	p := &fakeProcessor{}
	q := newTestQueue(p, 10, 3)
	defer q.Stop()

	q.Enqueue(models.CommissionTransfer{ID: "tf-1", Reference: "100", Amount: 375})
	q.Enqueue(models.CommissionTransfer{ID: "tf-2", Reference: "101", Amount: 250})
	q.Flush()

	if len(p.batches) != 1 || len(p.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2, got %+v", p.batches)
	}
	if q.Depth() != 0 {
		t.Fatalf("queue should be drained, depth=%d", q.Depth())
	}
}

func TestTransferQueueRetryBackoffAndPermanentFailure(t *testing.T) {
	p := &fakeProcessor{err: errors.New("provider down")}
	q := newTestQueue(p, 10, 2)
	defer q.Stop()

	var delays []time.Duration
	q.AfterFunc = immediateAfter(&delays)

	var dropped []models.CommissionTransfer
	q.OnPermanentFailure = func(tr models.CommissionTransfer) {
		dropped = append(dropped, tr)
	}

	q.Enqueue(models.CommissionTransfer{ID: "tf-1", Reference: "100", Amount: 375})

	// each flush fails and immediately re-enqueues until the budget is spent
	q.Flush() // retry 1
	q.Flush() // retry 2
	q.Flush() // exceeds maxRetries, dropped

	if len(delays) != 2 {
		t.Fatalf("expected 2 scheduled retries, got %d", len(delays))
	}
	if delays[0] != 2*time.Second || delays[1] != 4*time.Second {
		t.Fatalf("expected strictly doubling delays, got %v", delays)
	}
	if len(dropped) != 1 || dropped[0].ID != "tf-1" {
		t.Fatalf("expected permanent failure for tf-1, got %+v", dropped)
	}
	if dropped[0].RetryCount != 3 {
		t.Fatalf("expected retry count past budget, got %d", dropped[0].RetryCount)
	}
	if q.Depth() != 0 {
		t.Fatalf("dropped transfer must not linger, depth=%d", q.Depth())
	}

	// never retried again
	q.Flush()
	if len(p.batches) != 3 {
		t.Fatalf("expected exactly 3 processor calls, got %d", len(p.batches))
	}
}

func TestTransferQueueStopDrainsBeyondOneBatch(t *testing.T) {
	p := &fakeProcessor{}
	q := newTestQueue(p, 2, 3)

	q.mu.Lock()
	q.pending = append(q.pending,
		models.CommissionTransfer{ID: "a"},
		models.CommissionTransfer{ID: "b"},
		models.CommissionTransfer{ID: "c"},
		models.CommissionTransfer{ID: "d"},
		models.CommissionTransfer{ID: "e"},
	)
	q.mu.Unlock()

	q.Stop()

	total := 0
	for _, batch := range p.batches {
		if len(batch) > 2 {
			t.Fatalf("batch over size limit: %d", len(batch))
		}
		total += len(batch)
	}
	if total != 5 {
		t.Fatalf("shutdown must not drop queued transfers, processed %d of 5", total)
	}
	if q.Depth() != 0 {
		t.Fatalf("queue should be empty after stop, depth=%d", q.Depth())
	}
}

func TestTransferQueueBatchSizeLimit(t *testing.T) {
	p := &fakeProcessor{}
	q := newTestQueue(p, 2, 3)
	defer q.Stop()

	q.mu.Lock()
	q.pending = append(q.pending,
		models.CommissionTransfer{ID: "a"},
		models.CommissionTransfer{ID: "b"},
		models.CommissionTransfer{ID: "c"},
	)
	q.mu.Unlock()

	q.Flush()
	if len(p.batches) != 1 || len(p.batches[0]) != 2 {
		t.Fatalf("flush should drain at most batchSize, got %+v", p.batches)
	}
	if q.Depth() != 1 {
		t.Fatalf("one transfer should remain, depth=%d", q.Depth())
	}
}
