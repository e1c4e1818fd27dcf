package chat

import (
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"

	"protector-server/models"
)

const (
	// feedChannel is the NOTIFY channel the messages insert trigger publishes to
	feedChannel = "messages_inserted"

	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute

	// pingInterval bounds how long a silently dead connection goes unnoticed
	pingInterval = 90 * time.Second
)

// PostgresFeed implements Feed on top of Postgres LISTEN/NOTIFY via lib/pq.
// A database trigger publishes each inserted message row as JSON on
// feedChannel; pq.Listener reconnects on its own when the connection drops.
type PostgresFeed struct {
	connStr  string
	listener *pq.Listener
	stop     chan struct{}
}

// NewPostgresFeed creates a feed for the given Postgres connection string
func NewPostgresFeed(connStr string) *PostgresFeed {
	return &PostgresFeed{
		connStr: connStr,
		stop:    make(chan struct{}),
	}
}

// Start opens the listener and begins dispatching insert notifications
func (f *PostgresFeed) Start(onMessage func(models.Message), onState func(connected bool)) error {
	f.listener = pq.NewListener(f.connStr, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			switch event {
			case pq.ListenerEventConnected:
				log.Println("✅ Message feed connected")
				onState(true)
			case pq.ListenerEventReconnected:
				log.Println("✅ Message feed reconnected")
				onState(true)
			case pq.ListenerEventDisconnected:
				log.Printf("⚠️ Message feed disconnected: %v", err)
				onState(false)
			case pq.ListenerEventConnectionAttemptFailed:
				log.Printf("⚠️ Message feed reconnect attempt failed: %v", err)
			}
		})

	if err := f.listener.Listen(feedChannel); err != nil {
		return err
	}

	go f.run(onMessage)
	return nil
}

func (f *PostgresFeed) run(onMessage func(models.Message)) {
	for {
		select {
		case notification := <-f.listener.Notify:
			if notification == nil {
				// nil is delivered after a reconnect; the service's resync
				// covers anything missed while the connection was down
				continue
			}
			var message models.Message
			if err := json.Unmarshal([]byte(notification.Extra), &message); err != nil {
				log.Printf("❌ Error decoding feed payload: %v", err)
				continue
			}
			onMessage(message)

		case <-time.After(pingInterval):
			go func() {
				if err := f.listener.Ping(); err != nil {
					log.Printf("⚠️ Message feed ping failed: %v", err)
				}
			}()

		case <-f.stop:
			return
		}
	}
}

// Close tears down the listener and stops the dispatch loop
func (f *PostgresFeed) Close() error {
	close(f.stop)
	if f.listener != nil {
		return f.listener.Close()
	}
	return nil
}
