package realtime

import (
	"context"
	"log"
	"time"

	"deptbook/internal/modules/booking"
)

type StatusSource interface {
	GetStatus(ctx context.Context, resourceID string, at time.Time) (*booking.StatusSnapshot, error)
}

// Fanout turns reservation events into fresh status snapshots for the
// clients watching the affected resource.
type Fanout struct {
	hub    *Hub
	status StatusSource
}

func NewFanout(hub *Hub, status StatusSource) *Fanout {
	f := &Fanout{hub: hub, status: status}
	hub.OnSubscribe(func(resourceID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		f.push(ctx, resourceID, MessageStatus)
	})
	return f
}

func (f *Fanout) HandleEvent(ctx context.Context, e Event) {
	f.push(ctx, e.ResourceID, e.Type)
}

// RefreshSubscribed re-sends the current snapshot of every watched resource.
func (f *Fanout) RefreshSubscribed(ctx context.Context) {
	for _, id := range f.hub.SubscribedResources() {
		if ctx.Err() != nil {
			return
		}
		f.push(ctx, id, MessageStatus)
	}
}

func (f *Fanout) push(ctx context.Context, resourceID, kind string) {
	snap, err := f.status.GetStatus(ctx, resourceID, time.Time{})
	if err != nil {
		log.Printf("realtime: status resource_id=%s: %v", resourceID, err)
		return
	}
	f.hub.BroadcastToResource(resourceID, &Message{
		Type:       kind,
		ResourceID: resourceID,
		Payload:    snap,
	})
}
