// Package audit records booking activity without ever delaying or failing
// the operation that produced it.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"deptbook/internal/domain"

	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

// Sink persists activity entries.
type Sink interface {
	Create(ctx context.Context, e *domain.ActivityEntry) error
}

// Dispatcher queues entries on a buffered channel drained by one worker.
// Record never blocks: when the buffer is full the entry is dropped and
// logged.
type Dispatcher struct {
	sink  Sink
	queue chan domain.ActivityEntry
	now   func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(sink Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan domain.ActivityEntry, buffer),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Record enqueues an entry for userID acting on targetID.
func (d *Dispatcher) Record(ctx context.Context, userID string, action domain.ActivityAction, targetID string, metadata map[string]string) {
	entry := domain.ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		TargetID:  targetID,
		Metadata:  metadata,
		CreatedAt: d.now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("audit_dropped reason=closed action=%s target_id=%s", action, targetID)
		return
	}

	select {
	case d.queue <- entry:
	default:
		log.Printf("audit_dropped reason=buffer_full action=%s target_id=%s", action, targetID)
	}
}

// Close stops accepting entries and waits for queued ones to be written
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for entry := range d.queue {
		d.write(entry)
	}
}

func (d *Dispatcher) write(entry domain.ActivityEntry) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("audit_panic action=%s target_id=%s panic=%v", entry.Action, entry.TargetID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.sink.Create(ctx, &entry); err != nil {
		log.Printf("audit_write_failed action=%s target_id=%s user_id=%s error=%q", entry.Action, entry.TargetID, entry.UserID, err.Error())
	}
}
