package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and persists them, optionally
// mirroring each event to a secondary sink (Kafka). Persistence failures
// are logged and skipped: audit is best-effort and must never wedge the
// pipeline.
type Worker struct {
	store  Store
	mirror Publisher
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// WithMirror adds a secondary sink consulted after the store append.
func (w *Worker) WithMirror(mirror Publisher) *Worker {
	w.mirror = mirror
	return w
}

// Run drains the inbox until ctx is cancelled, then flushes what is already
// buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) flush() {
	for {
		select {
		case event := <-w.inbox:
			w.persist(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"event_type", event.Type,
			"driver_id", event.DriverID,
			"error", err,
		)
	}
	if w.mirror != nil {
		w.mirror.Emit(ctx, event)
	}
}
