package jobs

import (
	"log"
	"time"

	"protector-server/models"
	"protector-server/store"
)

// ExpirationJob cancels pending bookings nobody accepted within the allowed
// window. Cancellation goes through the booking store so the status notifier
// announces it in the thread like any other transition.
type ExpirationJob struct {
	bookings *store.BookingStore
	maxAge   time.Duration
	stopChan chan bool
}

// NewExpirationJob creates a new expiration job
func NewExpirationJob(bookings *store.BookingStore, maxAge time.Duration) *ExpirationJob {
	return &ExpirationJob{
		bookings: bookings,
		maxAge:   maxAge,
		stopChan: make(chan bool),
	}
}

// Start begins the expiration job
func (j *ExpirationJob) Start() {
	go j.run()
	log.Println("🚀 Booking expiration job started")
}

// Stop stops the expiration job
func (j *ExpirationJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Booking expiration job stopped")
}

func (j *ExpirationJob) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cancelStaleBookings()
		case <-j.stopChan:
			return
		}
	}
}

// cancelStaleBookings finds pending bookings past the window and cancels them
func (j *ExpirationJob) cancelStaleBookings() {
	cutoff := time.Now().Add(-j.maxAge)

	stale, err := j.bookings.ListStalePending(cutoff)
	if err != nil {
		log.Printf("❌ Error checking stale bookings: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	log.Printf("⏰ Found %d stale pending bookings", len(stale))

	for _, booking := range stale {
		if _, err := j.bookings.UpdateStatus(booking.ID, models.BookingStatusCancelled, 0); err != nil {
			log.Printf("❌ Failed to cancel stale booking %d: %v", booking.ID, err)
			continue
		}
		log.Printf("✅ Stale booking %d cancelled", booking.ID)
	}
}
