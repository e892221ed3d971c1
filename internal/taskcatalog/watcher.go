package taskcatalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iehaus/buildboard/internal/eventbus"
)

// debounceInterval is the delay after an fsnotify event before reloading, so
// that editors writing multiple files trigger a single reload.
const debounceInterval = 200 * time.Millisecond

// Watcher reloads the catalog when its local directory changes and announces
// the reload on the event bus so dashboards can recompute. Only meaningful
// for the local catalog source; S3-backed deployments reload on restart.
type Watcher struct {
	catalog *Catalog
	dir     string
	bus     *eventbus.Bus
}

func NewWatcher(catalog *Catalog, dir string, bus *eventbus.Bus) *Watcher {
	return &Watcher{catalog: catalog, dir: dir, bus: bus}
}

// Start blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	slog.Info("catalog watcher started", "dir", w.dir)

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog watcher stopped")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceInterval)
				debounceCh = debounce.C
			} else {
				debounce.Reset(debounceInterval)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("catalog watcher error", "error", err)
		case <-debounceCh:
			debounce = nil
			debounceCh = nil
			if err := w.catalog.Load(ctx); err != nil {
				slog.Error("catalog reload failed, keeping previous snapshot", "error", err)
				continue
			}
			slog.Info("catalog reloaded", "templates", w.catalog.Len())
			w.bus.PublishNew(eventbus.TypeCatalogReloaded, "", nil)
		}
	}
}
