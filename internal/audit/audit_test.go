package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverhub/internal/audit"
	"driverhub/pkg/domain"
)

func TestStorePublisherStampsDefaults(t *testing.T) {
	store := audit.NewInMemoryStore()
	pub := audit.NewStorePublisher(store)
	driverID := domain.NewDriverID()

	pub.Emit(context.Background(), audit.Event{
		Type:     audit.EventDriverApplied,
		DriverID: driverID,
	})

	events, err := store.ListByDriver(context.Background(), driverID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestChanPublisherDropsWhenFull(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	pub := audit.NewChanPublisher(inbox)

	pub.Emit(context.Background(), audit.Event{Type: audit.EventDriverApplied})
	// Full buffer: Emit must not block.
	done := make(chan struct{})
	go func() {
		pub.Emit(context.Background(), audit.Event{Type: audit.EventDocumentUploaded})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full inbox")
	}
	assert.Len(t, inbox, 1)
}

func TestWorkerPersistsAndFlushes(t *testing.T) {
	store := audit.NewInMemoryStore()
	inbox := make(chan audit.Event, 8)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := audit.NewWorker(store, inbox, logger)
	pub := audit.NewChanPublisher(inbox)

	driverID := domain.NewDriverID()
	pub.Emit(context.Background(), audit.Event{Type: audit.EventDriverApplied, DriverID: driverID})
	pub.Emit(context.Background(), audit.Event{Type: audit.EventRegistrationSubmitted, DriverID: driverID})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		events, err := store.ListByDriver(context.Background(), driverID)
		return err == nil && len(events) == 2
	}, time.Second, 5*time.Millisecond)

	// Buffered events survive shutdown.
	pub.Emit(context.Background(), audit.Event{Type: audit.EventDriverVerified, DriverID: driverID})
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	events, err := store.ListByDriver(context.Background(), driverID)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

type recordingMirror struct {
	events []audit.Event
}

func (m *recordingMirror) Emit(_ context.Context, event audit.Event) {
	m.events = append(m.events, event)
}

func TestWorkerMirrorsAfterPersist(t *testing.T) {
	store := audit.NewInMemoryStore()
	inbox := make(chan audit.Event, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mirror := &recordingMirror{}
	worker := audit.NewWorker(store, inbox, logger).WithMirror(mirror)

	driverID := domain.NewDriverID()
	inbox <- audit.Event{ID: "evt-1", Type: audit.EventDriverRejected, DriverID: driverID, Timestamp: time.Now()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = worker.Run(ctx)

	events, err := store.ListByDriver(context.Background(), driverID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, mirror.events, 1)
	assert.Equal(t, "evt-1", mirror.events[0].ID)
}
