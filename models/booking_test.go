package models

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	forward := []BookingStatus{
		BookingStatusPending,
		BookingStatusAccepted,
		BookingStatusEnRoute,
		BookingStatusArrived,
		BookingStatusInService,
		BookingStatusCompleted,
	}

	for i, from := range forward {
		for j, to := range forward {
			got := CanTransition(from, to)
			want := j > i && from != BookingStatusCompleted
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionCancellation(t *testing.T) {
	nonTerminal := []BookingStatus{
		BookingStatusPending,
		BookingStatusAccepted,
		BookingStatusEnRoute,
		BookingStatusArrived,
		BookingStatusInService,
	}

	for _, from := range nonTerminal {
		if !CanTransition(from, BookingStatusCancelled) {
			t.Errorf("cancellation from %s should be allowed", from)
		}
	}

	if CanTransition(BookingStatusCompleted, BookingStatusCancelled) {
		t.Error("cancellation from completed should be rejected")
	}
	if CanTransition(BookingStatusCancelled, BookingStatusCancelled) {
		t.Error("cancellation from cancelled should be rejected")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, terminal := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		for _, to := range []BookingStatus{BookingStatusPending, BookingStatusAccepted, BookingStatusInService} {
			if CanTransition(terminal, to) {
				t.Errorf("transition %s -> %s should be rejected", terminal, to)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition(BookingStatus("bogus"), BookingStatusAccepted) {
		t.Error("unknown source status should be rejected")
	}
	if CanTransition(BookingStatusPending, BookingStatus("bogus")) {
		t.Error("unknown target status should be rejected")
	}
}

func TestInvoicePayloadTotal(t *testing.T) {
	payload := InvoicePayload{
		BasePrice:    100000,
		HourlyRate:   25000,
		Duration:     24,
		VehicleFee:   15000,
		PersonnelFee: 30000,
	}

	if got := payload.Total(); got != 745000 {
		t.Errorf("Total() = %d, want 745000", got)
	}
}
