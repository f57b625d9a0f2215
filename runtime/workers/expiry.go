package workers

import (
	"context"
	"log/slog"
	"time"

	"tempchat/contract"
)

// ExpiryWorker enforces the retention window: on every tick it removes
// messages older than the window, which publishes the matching delete
// change events. A failed sweep is logged and retried on the next tick.
type ExpiryWorker struct {
	store    contract.IMessageStore
	log      *slog.Logger
	interval time.Duration
}

func NewExpiryWorker(store contract.IMessageStore, log *slog.Logger, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{store: store, log: log, interval: interval}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting retention sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping retention sweeper")
			return nil
		case <-ticker.C:
			if _, err := w.store.DeleteExpired(time.Now()); err != nil {
				w.log.Warn("Retention sweep failed", "error", err)
			}
		}
	}
}
