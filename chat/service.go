package chat

import (
	"fmt"
	"log"
	"sync"
	"time"

	"protector-server/models"
	"protector-server/store"
)

// Messages is the store surface the chat service needs
type Messages interface {
	Send(in store.SendInput) (*models.Message, error)
	ListByBooking(bookingID uint) ([]models.Message, error)
	ListByBookingSince(bookingID, afterID uint) ([]models.Message, error)
	MarkRead(bookingID, readerID uint) error
}

// Subscription is a live registration for one booking's message inserts.
// Delivery is deduplicated by message id, so a row reported by both the feed
// and the resync backstop reaches the callback once. Concurrent sends can
// commit in inverted id order, so the dedup is a seen set above a floor, not
// a high-water mark: a lower id arriving after a higher one is still new.
// The floor only advances when a resync pass has confirmed everything at or
// below it was fetched and delivered, which also bounds the seen set.
type Subscription struct {
	id        uint64
	BookingID uint
	fn        func(models.Message)
	floor     uint
	seen      map[uint]struct{}
}

// Service is the read/write/subscribe façade shared by the client and
// operator surfaces. Reads and writes go straight to the store and never
// depend on the live feed; the feed is a latency optimization with the
// periodic resync as the correctness backstop.
type Service struct {
	messages    Messages
	feed        Feed
	resyncEvery time.Duration

	mu        sync.Mutex
	subs      map[uint]map[uint64]*Subscription
	nextSubID uint64
	degraded  bool

	stop chan struct{}
}

// NewService creates a chat service over the given store and feed.
// resyncEvery <= 0 disables the polling backstop (used in tests).
func NewService(messages Messages, feed Feed, resyncEvery time.Duration) *Service {
	return &Service{
		messages:    messages,
		feed:        feed,
		resyncEvery: resyncEvery,
		subs:        make(map[uint]map[uint64]*Subscription),
		stop:        make(chan struct{}),
	}
}

// Start connects the feed and begins the resync loop
func (s *Service) Start() error {
	if err := s.feed.Start(s.dispatch, s.setConnected); err != nil {
		return fmt.Errorf("starting message feed: %w", err)
	}
	if s.resyncEvery > 0 {
		go s.resyncLoop()
	}
	return nil
}

// Stop tears down the resync loop and the feed
func (s *Service) Stop() {
	close(s.stop)
	if err := s.feed.Close(); err != nil {
		log.Printf("⚠️ Error closing message feed: %v", err)
	}
}

// GetMessages is the single sanctioned read path for a booking's thread
func (s *Service) GetMessages(bookingID uint) ([]models.Message, error) {
	return s.messages.ListByBooking(bookingID)
}

// PostMessage persists a message and returns the stored row so the caller
// can render it before the realtime echo arrives. Store errors propagate
// unchanged; a failed send is never swallowed.
func (s *Service) PostMessage(in store.SendInput) (*models.Message, error) {
	return s.messages.Send(in)
}

// MarkRead marks the booking's messages from other senders as read
func (s *Service) MarkRead(bookingID, readerID uint) error {
	return s.messages.MarkRead(bookingID, readerID)
}

// Subscribe registers onMessage for every message inserted for the booking
// after registration. Callers wanting history call GetMessages first and
// deduplicate by message id across the race window.
func (s *Service) Subscribe(bookingID uint, onMessage func(models.Message)) (*Subscription, error) {
	if bookingID == 0 {
		return nil, fmt.Errorf("%w: booking_id is required", store.ErrValidation)
	}
	if onMessage == nil {
		return nil, fmt.Errorf("%w: onMessage callback is required", store.ErrValidation)
	}

	// Anchor the resync floor at the current tail so the backstop only
	// replays messages from after subscription start.
	existing, err := s.messages.ListByBooking(bookingID)
	if err != nil {
		return nil, err
	}
	var floor uint
	for _, msg := range existing {
		if msg.ID > floor {
			floor = msg.ID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	sub := &Subscription{
		id:        s.nextSubID,
		BookingID: bookingID,
		fn:        onMessage,
		floor:     floor,
		seen:      make(map[uint]struct{}),
	}
	if s.subs[bookingID] == nil {
		s.subs[bookingID] = make(map[uint64]*Subscription)
	}
	s.subs[bookingID][sub.id] = sub

	return sub, nil
}

// Unsubscribe releases a subscription; leaking them keeps the registration
// alive for the life of the process
func (s *Service) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if members, ok := s.subs[sub.BookingID]; ok {
		delete(members, sub.id)
		if len(members) == 0 {
			delete(s.subs, sub.BookingID)
		}
	}
}

// Degraded reports whether live delivery is currently paused. Reads and
// writes keep working either way.
func (s *Service) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Service) setConnected(connected bool) {
	s.mu.Lock()
	s.degraded = !connected
	s.mu.Unlock()
}

// dispatch routes one inserted message to the booking's subscribers
func (s *Service) dispatch(message models.Message) {
	s.mu.Lock()
	var targets []func(models.Message)
	for _, sub := range s.subs[message.BookingID] {
		if message.ID <= sub.floor {
			continue
		}
		if _, dup := sub.seen[message.ID]; dup {
			continue
		}
		sub.seen[message.ID] = struct{}{}
		targets = append(targets, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(message)
	}
}

func (s *Service) resyncLoop() {
	ticker := time.NewTicker(s.resyncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.resync()
		case <-s.stop:
			return
		}
	}
}

// resync re-fetches each subscribed booking's tail and delivers whatever the
// feed missed, in order, deduplicated by the per-subscription seen set. After
// a successful pass every id up to the fetched maximum is known delivered, so
// the floor advances there and the seen entries below it are pruned.
func (s *Service) resync() {
	s.mu.Lock()
	cursors := make(map[uint]uint)
	for bookingID, members := range s.subs {
		for _, sub := range members {
			cur, ok := cursors[bookingID]
			if !ok || sub.floor < cur {
				cursors[bookingID] = sub.floor
			}
		}
	}
	s.mu.Unlock()

	for bookingID, afterID := range cursors {
		missed, err := s.messages.ListByBookingSince(bookingID, afterID)
		if err != nil {
			log.Printf("⚠️ Resync failed for booking %d: %v", bookingID, err)
			continue
		}
		for _, message := range missed {
			s.dispatch(message)
		}
		if len(missed) == 0 {
			continue
		}

		var maxID uint
		for _, message := range missed {
			if message.ID > maxID {
				maxID = message.ID
			}
		}

		s.mu.Lock()
		for _, sub := range s.subs[bookingID] {
			if maxID > sub.floor {
				sub.floor = maxID
			}
			for id := range sub.seen {
				if id <= sub.floor {
					delete(sub.seen, id)
				}
			}
		}
		s.mu.Unlock()
	}
}
