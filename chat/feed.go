package chat

import "protector-server/models"

// Feed is the change-feed mechanism behind live message delivery: it reports
// every message row inserted into the database, across all bookings, over a
// single shared transport. Delivery is best-effort; the service's periodic
// resync is the correctness backstop.
type Feed interface {
	// Start begins delivering insert events to onMessage. onState reports
	// transport connectivity so the service can flag degraded delivery.
	// onMessage handlers must not block.
	Start(onMessage func(models.Message), onState func(connected bool)) error
	Close() error
}
