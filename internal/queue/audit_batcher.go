package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tiketbus/internal/domain/models"
	"tiketbus/internal/metrics"
	"tiketbus/internal/repositories"
	"tiketbus/internal/utils"
)

// AuditBatcher collects audit events off the request path and writes them in
// batches. Best effort: a failed flush is logged and the batch is dropped,
// losing events only under backing-store failure.
type AuditBatcher struct {
	Repo          repositories.AuditRepository
	BatchSize     int
	FlushInterval time.Duration

	mu      sync.Mutex
	pending []models.AuditEvent

	flushMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewAuditBatcher(repo repositories.AuditRepository, batchSize int, interval time.Duration) *AuditBatcher {
	b := &AuditBatcher{
		Repo:          repo,
		BatchSize:     batchSize,
		FlushInterval: interval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go b.loop()
	return b
}

// Enqueue records an event without blocking the caller.
func (b *AuditBatcher) Enqueue(ev models.AuditEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = utils.NowUTC()
	}

	b.mu.Lock()
	b.pending = append(b.pending, ev)
	full := len(b.pending) >= b.BatchSize
	metrics.AuditQueueDepth.Set(float64(len(b.pending)))
	b.mu.Unlock()

	if full {
		go b.Flush()
	}
}

// Flush writes up to BatchSize pending events. Concurrent flushes are
// serialized; a tick landing during an active flush is a no-op.
func (b *AuditBatcher) Flush() {
	if !b.flushMu.TryLock() {
		return
	}
	defer b.flushMu.Unlock()

	for {
		batch := b.take()
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := b.Repo.InsertBatch(ctx, batch)
		cancel()
		if err != nil {
			utils.LogEvent("", "audit", "flush", "batch insert failed, dropping "+strconv.Itoa(len(batch))+" events: "+err.Error())
			metrics.AuditEventsDroppedTotal.Add(float64(len(batch)))
			return
		}
		metrics.AuditEventsWrittenTotal.Add(float64(len(batch)))

		if len(batch) < b.BatchSize {
			return
		}
	}
}

func (b *AuditBatcher) take() []models.AuditEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.pending)
	if n == 0 {
		return nil
	}
	if n > b.BatchSize {
		n = b.BatchSize
	}
	batch := make([]models.AuditEvent, n)
	copy(batch, b.pending[:n])
	b.pending = append(b.pending[:0:0], b.pending[n:]...)
	metrics.AuditQueueDepth.Set(float64(len(b.pending)))
	return batch
}

// Depth reports the number of queued events.
func (b *AuditBatcher) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stop drains remaining events and terminates the flush loop.
func (b *AuditBatcher) Stop() {
	b.once.Do(func() { close(b.stop) })
	<-b.done
	b.Flush()
}

func (b *AuditBatcher) loop() {
	defer close(b.done)
	ticker := time.NewTicker(b.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Flush()
		case <-b.stop:
			return
		}
	}
}
