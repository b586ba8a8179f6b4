package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	"deptbook/internal/domain"
	"deptbook/internal/modules/booking"
)

const publishTimeout = 5 * time.Second

// Notifier publishes committed reservation changes without holding up the
// booking request.
type Notifier struct {
	broker Broker
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewNotifier(broker Broker) *Notifier {
	return &Notifier{broker: broker, now: time.Now}
}

func (n *Notifier) ReservationChanged(ctx context.Context, kind booking.ChangeKind, r domain.Reservation) {
	e := Event{
		Type:          string(kind),
		ResourceID:    r.ResourceID,
		ReservationID: r.ID,
		At:            n.now().UTC(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := n.broker.Publish(ctx, e); err != nil {
			log.Printf("realtime: publish %s reservation_id=%s: %v", e.Type, e.ReservationID, err)
		}
	}()
}

// Wait blocks until in-flight publishes finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
