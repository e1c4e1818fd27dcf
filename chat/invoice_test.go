package chat

import (
	"errors"
	"strings"
	"testing"

	"protector-server/models"
	"protector-server/store"
)

func TestSendInvoiceComputesTotal(t *testing.T) {
	svc, ms, _ := newTestService(t)
	defer svc.Stop()

	msg, err := svc.SendInvoice(5, 3, 7, models.InvoicePayload{
		BasePrice:    100000,
		HourlyRate:   25000,
		Duration:     24,
		VehicleFee:   15000,
		PersonnelFee: 30000,
	}, "inv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Type != models.MessageTypeInvoice {
		t.Errorf("message type = %s, want invoice", msg.Type)
	}
	if msg.Metadata == nil {
		t.Fatal("invoice message must carry its payload")
	}
	if msg.Metadata.TotalAmount != 745000 {
		t.Errorf("total = %d, want 745000", msg.Metadata.TotalAmount)
	}
	if msg.Metadata.Currency != "NGN" {
		t.Errorf("currency = %q, want default NGN", msg.Metadata.Currency)
	}
	if !strings.Contains(msg.Content, "7450.00") {
		t.Errorf("content should render the decimal total, got %q", msg.Content)
	}

	stored, _ := ms.ListByBooking(5)
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(stored))
	}
}

func TestSendInvoiceValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	defer svc.Stop()

	_, err := svc.SendInvoice(5, 3, 7, models.InvoicePayload{BasePrice: 100000}, "")
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("zero duration should fail validation, got %v", err)
	}

	_, err = svc.SendInvoice(5, 3, 7, models.InvoicePayload{Duration: 4, VehicleFee: -1}, "")
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("negative fee should fail validation, got %v", err)
	}
}

func TestSendInvoiceRetrySameRequestID(t *testing.T) {
	svc, ms, _ := newTestService(t)
	defer svc.Stop()

	payload := models.InvoicePayload{BasePrice: 50000, Duration: 2, HourlyRate: 10000}
	first, err := svc.SendInvoice(5, 3, 7, payload, "inv-retry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.SendInvoice(5, 3, 7, payload, "inv-retry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("retry should return the persisted row, got ids %d and %d", first.ID, second.ID)
	}

	stored, _ := ms.ListByBooking(5)
	if len(stored) != 1 {
		t.Errorf("expected 1 stored invoice, got %d", len(stored))
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		745000: "7450.00",
		100050: "1000.50",
	}
	for amount, want := range cases {
		if got := FormatAmount(amount); got != want {
			t.Errorf("FormatAmount(%d) = %q, want %q", amount, got, want)
		}
	}
}
