package store

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"protector-server/models"
)

// BookingStore persists bookings and owns their status lifecycle. Every
// successful status change emits exactly one StatusTransition to the
// registered listeners.
type BookingStore struct {
	db        *gorm.DB
	mu        sync.RWMutex
	listeners []func(models.StatusTransition)
}

// NewBookingStore creates a booking store backed by the given database handle
func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

// Notify registers a listener for booking status transitions
func (s *BookingStore) Notify(fn func(models.StatusTransition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// CreateBookingInput carries the client-submitted booking fields
type CreateBookingInput struct {
	ClientID      uint      `json:"client_id"`
	ServiceID     uint      `json:"service_id"`
	PickupAddress string    `json:"pickup_address"`
	Destination   *string   `json:"destination"`
	ScheduledDate time.Time `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`
	DurationHours int       `json:"duration_hours"`
	Notes         *string   `json:"notes"`
}

func (in CreateBookingInput) validate() error {
	var missing []string
	if in.ClientID == 0 {
		missing = append(missing, "client_id")
	}
	if in.ServiceID == 0 {
		missing = append(missing, "service_id")
	}
	if strings.TrimSpace(in.PickupAddress) == "" {
		missing = append(missing, "pickup_address")
	}
	if in.ScheduledDate.IsZero() {
		missing = append(missing, "scheduled_date")
	}
	if strings.TrimSpace(in.ScheduledTime) == "" {
		missing = append(missing, "scheduled_time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Create validates the input and persists a new booking in pending status
func (s *BookingStore) Create(in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var clientCount int64
	if err := s.db.Model(&models.User{}).Where("id = ?", in.ClientID).Count(&clientCount).Error; err != nil {
		return nil, fmt.Errorf("checking client: %w", err)
	}
	if clientCount == 0 {
		return nil, fmt.Errorf("%w: client %d", ErrForeignKey, in.ClientID)
	}

	var serviceCount int64
	if err := s.db.Model(&models.Service{}).Where("id = ?", in.ServiceID).Count(&serviceCount).Error; err != nil {
		return nil, fmt.Errorf("checking service: %w", err)
	}
	if serviceCount == 0 {
		return nil, fmt.Errorf("%w: service %d", ErrForeignKey, in.ServiceID)
	}

	duration := in.DurationHours
	if duration <= 0 {
		duration = 1
	}

	booking := models.Booking{
		BookingCode:   newBookingCode(),
		ClientID:      in.ClientID,
		ServiceID:     in.ServiceID,
		Status:        models.BookingStatusPending,
		PickupAddress: in.PickupAddress,
		Destination:   in.Destination,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		DurationHours: duration,
		Notes:         in.Notes,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	log.Printf("✅ Booking %s created for client %d", booking.BookingCode, booking.ClientID)
	return &booking, nil
}

// UpdateStatus applies a status transition and emits the transition event.
// Only the listed forward order is allowed; cancellation is reachable from
// any non-terminal state.
func (s *BookingStore) UpdateStatus(bookingID uint, newStatus models.BookingStatus, operatorID uint) (*models.Booking, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("loading booking: %w", err)
	}

	from := booking.Status
	if !models.CanTransition(from, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, newStatus)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == models.BookingStatusAccepted && operatorID != 0 {
		updates["operator_id"] = operatorID
	}
	if err := s.db.Model(&booking).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating booking status: %w", err)
	}
	booking.Status = newStatus

	transition := models.StatusTransition{
		TransitionID: uuid.New().String(),
		BookingID:    booking.ID,
		ClientID:     booking.ClientID,
		OperatorID:   operatorID,
		From:         from,
		To:           newStatus,
		OccurredAt:   time.Now(),
	}
	s.emit(transition)

	log.Printf("✅ Booking %d status: %s -> %s", booking.ID, from, newStatus)
	return &booking, nil
}

func (s *BookingStore) emit(t models.StatusTransition) {
	s.mu.RLock()
	listeners := make([]func(models.StatusTransition), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(t)
	}
}

// GetByID returns a booking by its opaque id
func (s *BookingStore) GetByID(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("loading booking: %w", err)
	}
	return &booking, nil
}

// List returns bookings, optionally filtered by status, newest first
func (s *BookingStore) List(status models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	query := s.db.Order("created_at DESC")
	if status != "" {
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return bookings, nil
}

// ListByClient returns a client's bookings, newest first
func (s *BookingStore) ListByClient(clientID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return bookings, nil
}

// ListStalePending returns pending bookings created before the cutoff
func (s *BookingStore) ListStalePending(cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.Where("status = ? AND created_at <= ?", models.BookingStatusPending, cutoff).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("listing stale bookings: %w", err)
	}
	return bookings, nil
}

// newBookingCode builds the human-facing short code. The opaque numeric id
// stays the only internal reference; this code is display-only.
func newBookingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "PRT-" + raw[:8]
}
