package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"protector-server/models"
)

func validBookingInput() CreateBookingInput {
	return CreateBookingInput{
		ClientID:      7,
		ServiceID:     2,
		PickupAddress: "12 Adeola Odeku St, Victoria Island, Lagos",
		ScheduledDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		DurationHours: 8,
	}
}

func TestCreateBookingMissingFields(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	in := validBookingInput()
	in.PickupAddress = ""
	in.ScheduledTime = ""

	_, err := s.Create(in)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "pickup_address") || !strings.Contains(err.Error(), "scheduled_time") {
		t.Errorf("error should name the missing fields, got %q", err.Error())
	}
	expectationsMet(t, mock)
}

func TestCreateBookingUnknownClient(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := s.Create(validBookingInput())
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestCreateBookingUnknownService(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "services"`).
		WithArgs(uint(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := s.Create(validBookingInput())
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestCreateBookingStartsPending(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "services"`).
		WithArgs(uint(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	booking, err := s.Create(validBookingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID != 42 {
		t.Errorf("expected id 42, got %d", booking.ID)
	}
	if booking.Status != models.BookingStatusPending {
		t.Errorf("new booking should be pending, got %s", booking.Status)
	}
	if !strings.HasPrefix(booking.BookingCode, "PRT-") || len(booking.BookingCode) != 12 {
		t.Errorf("unexpected booking code %q", booking.BookingCode)
	}
	expectationsMet(t, mock)
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	_, err := s.UpdateStatus(99, models.BookingStatusAccepted, 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateStatusRejectsRegression(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status"}).
			AddRow(5, 7, string(models.BookingStatusInService)))

	_, err := s.UpdateStatus(5, models.BookingStatusAccepted, 3)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	_, err := s.UpdateStatus(5, models.BookingStatus("teleported"), 3)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateStatusEmitsTransition(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	var got []models.StatusTransition
	s.Notify(func(tr models.StatusTransition) { got = append(got, tr) })

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status"}).
			AddRow(5, 7, string(models.BookingStatusPending)))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := s.UpdateStatus(5, models.BookingStatusAccepted, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingStatusAccepted {
		t.Errorf("expected accepted, got %s", booking.Status)
	}

	if len(got) != 1 {
		t.Fatalf("expected exactly one transition event, got %d", len(got))
	}
	tr := got[0]
	if tr.TransitionID == "" {
		t.Error("transition id must be set")
	}
	if tr.BookingID != 5 || tr.ClientID != 7 || tr.OperatorID != 3 {
		t.Errorf("unexpected transition identifiers: %+v", tr)
	}
	if tr.From != models.BookingStatusPending || tr.To != models.BookingStatusAccepted {
		t.Errorf("unexpected transition states: %s -> %s", tr.From, tr.To)
	}
	expectationsMet(t, mock)
}

func TestUpdateStatusCancellationFromEnRoute(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewBookingStore(db)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status"}).
			AddRow(5, 7, string(models.BookingStatusEnRoute)))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := s.UpdateStatus(5, models.BookingStatusCancelled, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
	expectationsMet(t, mock)
}
