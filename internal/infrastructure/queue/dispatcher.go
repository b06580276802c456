package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/garagecrm/access-api/internal/api/metrics"
	"github.com/garagecrm/access-api/internal/core/domain"
	"github.com/garagecrm/access-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// AuditDispatcher persists security events off the request path. Events are
// sharded over a fixed set of workers by tenant, so one tenant's events are
// written in the order they were recorded.
type AuditDispatcher struct {
	workers []chan domain.SecurityEvent
	repo    ports.SecurityEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.SecurityRecorder = (*AuditDispatcher)(nil)

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.SecurityEventRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.SecurityEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SecurityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// writes what is left in its channel and returns; Wait blocks until then.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *AuditDispatcher) Wait() {
	d.wg.Wait()
}

// Record hands event to the worker responsible for its tenant. It never
// blocks: when that worker's channel is full the event is dropped and counted.
func (d *AuditDispatcher) Record(event domain.SecurityEvent) {
	idx := d.shardIndex(event.TenantID)
	select {
	case d.workers[idx] <- event:
		metrics.SecurityEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.SecurityEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("tenant_id", event.TenantID).
			Str("reason", string(event.Reason)).
			Int("worker_id", idx).
			Msg("audit queue full, security event dropped")
	}
}

// shardIndex maps a tenant deterministically to a worker index. Anonymous
// denials carry no tenant and all land on the same worker.
func (d *AuditDispatcher) shardIndex(tenantID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SecurityEvent) {
	defer d.wg.Done()
	depth := metrics.SecurityEventsQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			d.flush(id, ch)
			depth.Set(0)
			return
		case event := <-ch:
			depth.Set(float64(len(ch)))
			d.insert(context.WithoutCancel(ctx), id, event)
		}
	}
}

// flush writes the events still buffered in ch with a fresh deadline, since
// the worker context is already cancelled.
func (d *AuditDispatcher) flush(id int, ch <-chan domain.SecurityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.insert(ctx, id, event)
		default:
			return
		}
	}
}

func (d *AuditDispatcher) insert(ctx context.Context, id int, event domain.SecurityEvent) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	if err := d.repo.Insert(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("tenant_id", event.TenantID).
			Int("worker_id", id).
			Msg("security event persistence failed")
	}
}
