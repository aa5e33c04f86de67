package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"driverhub/pkg/domain"
)

// Store is the append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDriver(ctx context.Context, driverID domain.DriverID) ([]Event, error)
}

// Publisher captures structured audit events. Pipeline services emit
// through this interface so tests can swap sinks easily.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// StorePublisher writes events straight to the store. Audit is best-effort
// for the pipeline: a failed append must not fail the driver's operation,
// so Emit swallows store errors after stamping defaults.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) {
	_ = p.store.Append(ctx, stamp(event))
}

// ChanPublisher hands events to a buffered channel consumed by a Worker,
// keeping audit I/O off the request path. Events are dropped when the
// buffer is full rather than blocking a driver operation.
type ChanPublisher struct {
	inbox chan<- Event
}

func NewChanPublisher(inbox chan<- Event) *ChanPublisher {
	return &ChanPublisher{inbox: inbox}
}

func (p *ChanPublisher) Emit(_ context.Context, event Event) {
	select {
	case p.inbox <- stamp(event):
	default:
	}
}

func stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return event
}
