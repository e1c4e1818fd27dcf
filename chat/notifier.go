package chat

import (
	"fmt"
	"sync"
	"time"

	"protector-server/models"
	"protector-server/store"
)

// MessageSender is the slice of the message store the notifier needs
type MessageSender interface {
	Send(in store.SendInput) (*models.Message, error)
}

// statusText maps each reachable status to the system message announcing it
var statusText = map[models.BookingStatus]string{
	models.BookingStatusAccepted:  "Your booking has been accepted. A protection team is being assigned.",
	models.BookingStatusEnRoute:   "Your security team is now en route to your location.",
	models.BookingStatusArrived:   "Your security team has arrived at the pickup location.",
	models.BookingStatusInService: "Your protection detail is now in service.",
	models.BookingStatusCompleted: "Your service has been completed. Thank you for choosing Protector.",
	models.BookingStatusCancelled: "This booking has been cancelled.",
}

// StatusNotifier turns booking status transitions into user-visible system
// messages. Handling the same transition event twice produces exactly one
// message: events are deduplicated in-process by transition id, and the send
// carries the id as its idempotency key so the store rejects duplicates too.
type StatusNotifier struct {
	messages MessageSender

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewStatusNotifier creates a notifier that writes through the given sender
func NewStatusNotifier(messages MessageSender) *StatusNotifier {
	return &StatusNotifier{
		messages: messages,
		seen:     make(map[string]time.Time),
	}
}

// HandleTransition reacts to one status-change event
func (n *StatusNotifier) HandleTransition(t models.StatusTransition) error {
	text, ok := statusText[t.To]
	if !ok {
		return nil
	}

	key := t.TransitionID
	if key == "" {
		// Events without an id fall back to a booking+transition bucket
		key = fmt.Sprintf("%d:%s:%s", t.BookingID, t.From, t.To)
	}

	n.mu.Lock()
	if _, dup := n.seen[key]; dup {
		n.mu.Unlock()
		return nil
	}
	n.seen[key] = time.Now()
	n.prune()
	n.mu.Unlock()

	_, err := n.messages.Send(store.SendInput{
		BookingID:   t.BookingID,
		SenderType:  models.SenderSystem,
		RecipientID: t.ClientID,
		Content:     text,
		Type:        models.MessageTypeSystem,
		RequestID:   "transition-" + key,
	})
	return err
}

// prune drops dedup entries older than an hour; callers hold n.mu
func (n *StatusNotifier) prune() {
	cutoff := time.Now().Add(-time.Hour)
	for key, at := range n.seen {
		if at.Before(cutoff) {
			delete(n.seen, key)
		}
	}
}
