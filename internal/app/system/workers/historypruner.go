// internal/app/system/workers/historypruner.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes records older than a cutoff and reports how many it removed.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryPruner is a background worker that trims the import history to a
// retention window.
type HistoryPruner struct {
	store     Pruner
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewHistoryPruner creates a pruner that runs every interval and deletes
// records older than retention.
func NewHistoryPruner(store Pruner, logger *zap.Logger, interval, retention time.Duration) *HistoryPruner {
	return &HistoryPruner{
		store:     store,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs one prune immediately, then begins the background loop.
func (w *HistoryPruner) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("import history pruner started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *HistoryPruner) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("import history pruner stopped")
	})
}

func (w *HistoryPruner) run() {
	defer w.wg.Done()

	w.Prune()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Prune()
		}
	}
}

// Prune runs one pass and returns how many records were deleted.
func (w *HistoryPruner) Prune() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := w.now().Add(-w.retention)
	count, err := w.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to prune import history", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("pruned import history",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
	}
	return count
}
