package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/garagecrm/access-api/internal/api/metrics"
	"github.com/garagecrm/access-api/internal/core/domain"
)

type stubEventRepo struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
	err    error
}

func (r *stubEventRepo) Insert(_ context.Context, event *domain.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *stubEventRepo) ListByTenant(context.Context, string, int) ([]*domain.SecurityEvent, error) {
	return nil, nil
}

func (r *stubEventRepo) snapshot() []domain.SecurityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SecurityEvent(nil), r.events...)
}

func TestAuditDispatcher_PersistsInTenantOrder(t *testing.T) {
	repo := &stubEventRepo{}
	d := NewAuditDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Record(domain.SecurityEvent{ID: fmt.Sprintf("ev-%02d", i), TenantID: "tenant_1", Reason: domain.ReasonPermissionDenied})
	}
	d.Record(domain.SecurityEvent{ID: "other", TenantID: "tenant_2"})

	deadline := time.Now().Add(2 * time.Second)
	for len(repo.snapshot()) < 21 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	var seen []string
	for _, ev := range repo.snapshot() {
		if ev.TenantID == "tenant_1" {
			seen = append(seen, ev.ID)
		}
	}
	if len(seen) != 20 {
		t.Fatalf("expected 20 tenant_1 events, got %d", len(seen))
	}
	for i, id := range seen {
		if want := fmt.Sprintf("ev-%02d", i); id != want {
			t.Fatalf("event %d = %s, want %s", i, id, want)
		}
	}
}

func TestAuditDispatcher_FlushesOnShutdown(t *testing.T) {
	repo := &stubEventRepo{}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())

	// Buffered before any worker runs.
	for i := 0; i < 5; i++ {
		d.Record(domain.SecurityEvent{ID: fmt.Sprintf("ev-%d", i), TenantID: "tenant_1"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := len(repo.snapshot()); got != 5 {
		t.Fatalf("expected 5 flushed events, got %d", got)
	}
}

func TestAuditDispatcher_DropsWhenFull(t *testing.T) {
	d := NewAuditDispatcher(1, &stubEventRepo{}, zerolog.Nop())
	before := testutil.ToFloat64(metrics.SecurityEventsDroppedTotal)

	for i := 0; i < channelBuffer+3; i++ {
		d.Record(domain.SecurityEvent{ID: fmt.Sprintf("ev-%d", i), TenantID: "tenant_1"})
	}

	if dropped := testutil.ToFloat64(metrics.SecurityEventsDroppedTotal) - before; dropped != 3 {
		t.Fatalf("expected 3 dropped events, got %v", dropped)
	}
	if depth := testutil.ToFloat64(metrics.SecurityEventsQueueDepth.WithLabelValues("0")); depth != channelBuffer {
		t.Fatalf("expected queue depth %d, got %v", channelBuffer, depth)
	}
}

func TestAuditDispatcher_InsertFailureDoesNotStopWorker(t *testing.T) {
	repo := &stubEventRepo{err: errors.New("mongo down")}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.SecurityEvent{ID: "ev-1", TenantID: "tenant_1"})
	time.Sleep(20 * time.Millisecond)

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()
	d.Record(domain.SecurityEvent{ID: "ev-2", TenantID: "tenant_1"})

	cancel()
	d.Wait()

	events := repo.snapshot()
	if len(events) != 1 || events[0].ID != "ev-2" {
		t.Fatalf("expected only ev-2 persisted, got %+v", events)
	}
}

func TestAuditDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewAuditDispatcher(8, &stubEventRepo{}, zerolog.Nop())
	first := d.shardIndex("tenant_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("tenant_42"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
	if idx := d.shardIndex(""); idx < 0 || idx >= 8 {
		t.Fatalf("shard out of range: %d", idx)
	}
}
