package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"protector-server/models"
)

// MessageStore persists booking-scoped chat messages. Rows are immutable
// once created except for the read fields; retrieval is always the full,
// created_at-ordered thread for a booking.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a message store backed by the given database handle
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// SendInput carries everything needed to persist one message. RequestID is an
// optional caller-supplied idempotency key: a retried send with the same key
// for the same booking returns the already-persisted row.
type SendInput struct {
	BookingID   uint
	SenderType  models.SenderType
	SenderID    uint
	RecipientID uint
	Content     string
	Type        models.MessageType
	Metadata    *models.InvoicePayload
	RequestID   string
}

func (in SendInput) validate() error {
	if in.BookingID == 0 {
		return fmt.Errorf("%w: booking_id is required", ErrValidation)
	}
	if !in.SenderType.IsValid() {
		return fmt.Errorf("%w: unknown sender type %q", ErrValidation, in.SenderType)
	}
	if in.Type != "" && !in.Type.IsValid() {
		return fmt.Errorf("%w: unknown message type %q", ErrValidation, in.Type)
	}
	// System messages may carry structured metadata instead of text; everything
	// else must have non-empty content.
	if strings.TrimSpace(in.Content) == "" {
		if in.Type != models.MessageTypeSystem || in.Metadata == nil {
			return fmt.Errorf("%w: content must not be empty", ErrValidation)
		}
	}
	return nil
}

// Send validates and persists a message. It fails with ErrNotFound when the
// booking does not exist: orphaned messages are a defect state, never a
// valid variant.
func (s *MessageStore) Send(in SendInput) (*models.Message, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var bookingCount int64
	if err := s.db.Model(&models.Booking{}).Where("id = ?", in.BookingID).Count(&bookingCount).Error; err != nil {
		return nil, fmt.Errorf("checking booking: %w", err)
	}
	if bookingCount == 0 {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, in.BookingID)
	}

	if in.RequestID != "" {
		var existing models.Message
		err := s.db.Where("booking_id = ? AND request_id = ?", in.BookingID, in.RequestID).
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking request id: %w", err)
		}
	}

	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := models.Message{
		BookingID:   in.BookingID,
		SenderType:  in.SenderType,
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Content:     in.Content,
		Type:        msgType,
		Metadata:    in.Metadata,
		RequestID:   in.RequestID,
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return &message, nil
}

// ListByBooking returns every message for a booking in a total order:
// created_at ascending, id as the tiebreaker for clock-resolution collisions.
func (s *MessageStore) ListByBooking(bookingID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// ListByBookingSince returns messages for a booking with id greater than
// afterID, in the same total order. Used by the polling backstop.
func (s *MessageStore) ListByBookingSince(bookingID, afterID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.Where("booking_id = ? AND id > ?", bookingID, afterID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// LatestInvoice returns the most recent invoice message for a booking, or
// ErrNoInvoice when none exists.
func (s *MessageStore) LatestInvoice(bookingID uint) (*models.Message, error) {
	var message models.Message
	err := s.db.Where("booking_id = ? AND message_type = ?", bookingID, models.MessageTypeInvoice).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNoInvoice, bookingID)
		}
		return nil, fmt.Errorf("loading invoice: %w", err)
	}
	return &message, nil
}

// MarkRead marks every message in the booking not sent by the reader as read
func (s *MessageStore) MarkRead(bookingID, readerID uint) error {
	now := time.Now()
	err := s.db.Model(&models.Message{}).
		Where("booking_id = ? AND sender_id <> ? AND is_read = ?", bookingID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}
