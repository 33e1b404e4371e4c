package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"timeopt/internal/sink"
)

// Flusher periodically serializes the status snapshot to the sink.
// It runs on its own goroutine, separate from the ingestion path, and
// owns a deterministic shutdown: stop ticking, flush once more, exit.
type Flusher struct {
	coord    *Coordinator
	sink     sink.StatusSink
	interval time.Duration
	logger   *zap.Logger
}

// NewFlusher creates a status flusher.
func NewFlusher(coord *Coordinator, s sink.StatusSink, interval time.Duration, logger *zap.Logger) *Flusher {
	return &Flusher{coord: coord, sink: s, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Sink failures are logged and
// retried on the next tick, never propagated.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush with a fresh deadline; ctx is already done.
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			f.flush(flushCtx)
			cancel()
			f.logger.Info("status flusher stopped")
			return
		case <-ticker.C:
			f.flush(ctx)
		}
	}
}

func (f *Flusher) flush(ctx context.Context) {
	if err := f.sink.WriteStatus(ctx, f.coord.Snapshot()); err != nil {
		f.logger.Warn("status flush failed", zap.Error(err))
	}
}
