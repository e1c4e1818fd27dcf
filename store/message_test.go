package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"protector-server/models"
)

func TestSendRejectsEmptyContent(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	_, err := s.Send(SendInput{
		BookingID:  5,
		SenderType: models.SenderClient,
		SenderID:   7,
		Content:    "   ",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSendAllowsSystemMessageWithMetadataOnly(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err := s.Send(SendInput{
		BookingID:  5,
		SenderType: models.SenderSystem,
		Type:       models.MessageTypeSystem,
		Metadata:   &models.InvoicePayload{BasePrice: 100000, Duration: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestSendRejectsUnknownSenderType(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	_, err := s.Send(SendInput{
		BookingID:  5,
		SenderType: models.SenderType("bot"),
		Content:    "hello",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSendUnknownBooking(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WithArgs(uint(99)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := s.Send(SendInput{
		BookingID:  99,
		SenderType: models.SenderClient,
		SenderID:   7,
		Content:    "hello",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSendDefaultsToTextType(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	msg, err := s.Send(SendInput{
		BookingID:   5,
		SenderType:  models.SenderClient,
		SenderID:    7,
		RecipientID: 3,
		Content:     "Hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != models.MessageTypeText {
		t.Errorf("expected text type, got %s", msg.Type)
	}
	if msg.ID != 11 {
		t.Errorf("expected id 11, got %d", msg.ID)
	}
	expectationsMet(t, mock)
}

func TestSendRetryWithRequestIDReturnsExistingRow(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE booking_id = \$1 AND request_id = \$2`).
		WithArgs(uint(5), "req-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "content", "request_id"}).
			AddRow(11, 5, "Hello", "req-abc"))

	msg, err := s.Send(SendInput{
		BookingID:  5,
		SenderType: models.SenderClient,
		SenderID:   7,
		Content:    "Hello",
		RequestID:  "req-abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != 11 {
		t.Errorf("retry should return the persisted row, got id %d", msg.ID)
	}
	expectationsMet(t, mock)
}

func TestListByBookingOrdersByCreatedAt(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE booking_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "content", "created_at"}).
			AddRow(1, 5, "Hello", base).
			AddRow(2, 5, "Hi, how can I help?", base.Add(time.Minute)).
			AddRow(3, 5, "Your booking has been accepted.", base.Add(2*time.Minute)))

	messages, err := s.ListByBooking(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Errorf("messages out of order at index %d", i)
		}
	}
	expectationsMet(t, mock)
}

func TestLatestInvoiceNone(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE booking_id = \$1 AND message_type = \$2`).
		WithArgs(uint(5), string(models.MessageTypeInvoice)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.LatestInvoice(5)
	if !errors.Is(err, ErrNoInvoice) {
		t.Fatalf("expected ErrNoInvoice, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestMarkReadSkipsOwnMessages(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewMessageStore(db)

	mock.ExpectExec(`UPDATE "messages" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := s.MarkRead(5, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}
