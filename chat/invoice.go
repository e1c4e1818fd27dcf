package chat

import (
	"fmt"

	"protector-server/models"
	"protector-server/store"
)

const defaultCurrency = "NGN"

// SendInvoice persists an operator-issued invoice message. The total is
// computed here, once, from the line items; downstream payment initiation
// reads it back from the stored metadata and never re-derives it.
func (s *Service) SendInvoice(bookingID, senderID, recipientID uint, payload models.InvoicePayload, requestID string) (*models.Message, error) {
	if payload.Duration <= 0 {
		return nil, fmt.Errorf("%w: invoice duration must be positive", store.ErrValidation)
	}
	if payload.BasePrice < 0 || payload.HourlyRate < 0 || payload.VehicleFee < 0 || payload.PersonnelFee < 0 {
		return nil, fmt.Errorf("%w: invoice amounts must not be negative", store.ErrValidation)
	}
	if payload.Currency == "" {
		payload.Currency = defaultCurrency
	}
	payload.TotalAmount = payload.Total()

	content := fmt.Sprintf("Invoice issued: %s %s for %d hour(s) of protection service.",
		payload.Currency, FormatAmount(payload.TotalAmount), payload.Duration)

	return s.messages.Send(store.SendInput{
		BookingID:   bookingID,
		SenderType:  models.SenderOperator,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Type:        models.MessageTypeInvoice,
		Metadata:    &payload,
		RequestID:   requestID,
	})
}

// FormatAmount renders a minor-unit amount as a decimal string
func FormatAmount(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
