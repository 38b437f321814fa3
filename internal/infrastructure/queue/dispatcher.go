package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/api/metrics"
	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

const (
	defaultWorkers      = 4
	defaultBuffer       = 256
	defaultWriteTimeout = 5 * time.Second
)

// ErrDispatcherClosed is returned by Close when called twice.
var ErrDispatcherClosed = errors.New("audit dispatcher closed")

// AuditDispatcher persists audit entries on a fixed pool of workers so that
// callers never wait on storage. Entries that cannot be queued are dropped
// and logged.
type AuditDispatcher struct {
	workers      []chan domain.AuditEntry
	service      ports.AuditService
	log          zerolog.Logger
	writeTimeout time.Duration

	next   atomic.Uint64
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers workers, each with
// a queue of buffer entries. Non-positive values fall back to defaults.
func NewAuditDispatcher(numWorkers, buffer int, service ports.AuditService, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &AuditDispatcher{
		workers:      make([]chan domain.AuditEntry, numWorkers),
		service:      service,
		log:          log,
		writeTimeout: defaultWriteTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has drained
// their queues.
func (d *AuditDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record queues entry without blocking. It satisfies ports.AuditRecorder.
func (d *AuditDispatcher) Record(entry domain.AuditEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(entry, "dispatcher closed")
		return
	}

	idx := int(d.next.Add(1) % uint64(len(d.workers)))
	select {
	case d.workers[idx] <- entry:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(entry, "queue full")
	}
}

// Close stops accepting entries and waits for queued entries to be written
// or for ctx to expire.
func (d *AuditDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AuditDispatcher) runWorker(id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for entry := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.persist(id, entry)
	}
}

func (d *AuditDispatcher) persist(workerID int, entry domain.AuditEntry) {
	// Detached from the request: the response has already been sent.
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	start := time.Now()
	err := d.service.Record(ctx, &entry)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEntriesTotal.WithLabelValues(string(entry.Action), "failed").Inc()
		d.log.Error().Err(err).
			Int("worker_id", workerID).
			Str("action", string(entry.Action)).
			Str("entity_type", entry.EntityType).
			Msg("audit write failed")
		return
	}
	metrics.AuditEntriesTotal.WithLabelValues(string(entry.Action), "persisted").Inc()
}

func (d *AuditDispatcher) drop(entry domain.AuditEntry, reason string) {
	metrics.AuditEntriesTotal.WithLabelValues(string(entry.Action), "dropped").Inc()
	d.log.Warn().
		Str("reason", reason).
		Str("action", string(entry.Action)).
		Str("entity_type", entry.EntityType).
		Msg("audit entry dropped")
}
