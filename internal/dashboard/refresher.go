package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iehaus/buildboard/internal/authz"
	"github.com/iehaus/buildboard/internal/eventbus"
	"github.com/iehaus/buildboard/internal/fiscal"
)

const (
	// refreshDebounce coalesces event bursts (a regeneration emits many task
	// events) into one rebuild.
	refreshDebounce = 500 * time.Millisecond
	eventBufSize    = 64
)

// Refresher keeps a company-wide snapshot of the running fiscal year warm.
// It recomputes from scratch on every invalidation instead of patching the
// previous snapshot; the task volume is small enough that correctness wins
// over incremental updates.
type Refresher struct {
	builder *Builder
	bus     *eventbus.Bus

	mu      sync.RWMutex
	current *Snapshot
}

func NewRefresher(builder *Builder, bus *eventbus.Bus) *Refresher {
	return &Refresher{builder: builder, bus: bus}
}

// Current returns the cached company snapshot, nil before the first rebuild.
func (r *Refresher) Current() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Run subscribes to the event bus and rebuilds the cached snapshot after each
// burst of invalidating events. It blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	subID, events := r.bus.Subscribe(eventBufSize)
	defer r.bus.Unsubscribe(subID)

	// Warm the cache so the first dashboard request never waits.
	r.rebuild(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !invalidates(ev.Type) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(refreshDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(refreshDebounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			r.rebuild(ctx)
		}
	}
}

func invalidates(t eventbus.Type) bool {
	switch t {
	case eventbus.TypeProjectCreated, eventbus.TypeProjectUpdated, eventbus.TypeProjectDeleted,
		eventbus.TypeTaskCreated, eventbus.TypeTaskUpdated, eventbus.TypeTaskStatusChanged,
		eventbus.TypeTasksRegenerated, eventbus.TypeCatalogReloaded:
		return true
	}
	return false
}

func (r *Refresher) rebuild(ctx context.Context) {
	year := fiscal.YearOf(r.builder.now().In(r.builder.loc))
	snap, err := r.builder.Build(ctx, nil, year, authz.ScopeCompany)
	if err != nil {
		slog.Error("dashboard rebuild failed", "error", err)
		return
	}
	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()
	r.bus.PublishNew(eventbus.TypeDashboardRefresh, snap.FiscalLabel, nil)
	slog.Debug("dashboard rebuilt",
		"fiscal_year", snap.FiscalYear,
		"projects", len(snap.Projects),
		"overdue_tasks", snap.KPI.OverdueTaskCount,
	)
}
