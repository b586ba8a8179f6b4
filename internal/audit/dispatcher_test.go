package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"deptbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
	err     error
	block   chan struct{}
}

func (s *memorySink) Create(ctx context.Context, e *domain.ActivityEntry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memorySink) snapshot() []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ActivityEntry(nil), s.entries...)
}

func closeWithin(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_WritesEntries(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 8)

	d.Record(context.Background(), "u1", domain.ActionReservationCreate, "r1", map[string]string{"title": "Room 1: sync"})
	d.Record(context.Background(), "u1", domain.ActionReservationCancel, "r1", nil)
	closeWithin(t, d)

	got := sink.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, domain.ActionReservationCreate, got[0].Action)
	assert.Equal(t, "r1", got[0].TargetID)
	assert.Equal(t, "Room 1: sync", got[0].Metadata["title"])
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, domain.ActionReservationCancel, got[1].Action)
}

func TestDispatcher_SinkErrorIsSwallowed(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	d := NewDispatcher(sink, 4)

	assert.NotPanics(t, func() {
		d.Record(context.Background(), "u1", domain.ActionReservationCreate, "r1", nil)
	})
	closeWithin(t, d)
	assert.Empty(t, sink.snapshot())
}

func TestDispatcher_FullBufferDropsWithoutBlocking(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	d := NewDispatcher(sink, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Record(context.Background(), "u1", domain.ActionReservationCreate, "r", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(sink.block)
	closeWithin(t, d)
	got := sink.snapshot()
	assert.NotEmpty(t, got)
	assert.Less(t, len(got), 10)
}

func TestDispatcher_RecordAfterCloseIsNoop(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 2)
	closeWithin(t, d)

	assert.NotPanics(t, func() {
		d.Record(context.Background(), "u1", domain.ActionReservationCreate, "r1", nil)
	})
	assert.Empty(t, sink.snapshot())
}
