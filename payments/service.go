package payments

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"protector-server/models"
	"protector-server/store"
)

// Gateway is the payment-gateway surface the service needs
type Gateway interface {
	InitializeTransaction(in InitializeInput) (*Authorization, error)
	VerifyTransaction(reference string) (*VerifyResult, error)
}

// InvoiceSource yields the latest invoice message for a booking
type InvoiceSource interface {
	LatestInvoice(bookingID uint) (*models.Message, error)
}

// StatusUpdater drives the booking transition on verified payment
type StatusUpdater interface {
	UpdateStatus(bookingID uint, newStatus models.BookingStatus, operatorID uint) (*models.Booking, error)
}

// SessionStore persists payment sessions keyed by gateway reference
type SessionStore interface {
	Create(session *models.PaymentSession) error
	FindByReference(reference string) (*models.PaymentSession, error)
	MarkStatus(reference, status string) error
}

// Session is what the caller needs to send the payer to the gateway
type Session struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

// Service owns the payment sub-flow: it carries the latest invoice's total
// into the gateway and, on verified success, accepts the booking.
type Service struct {
	gateway  Gateway
	invoices InvoiceSource
	bookings StatusUpdater
	sessions SessionStore

	callbackURL string
}

// NewService wires the payment sub-flow
func NewService(gateway Gateway, invoices InvoiceSource, bookings StatusUpdater, sessions SessionStore, callbackURL string) *Service {
	return &Service{
		gateway:     gateway,
		invoices:    invoices,
		bookings:    bookings,
		sessions:    sessions,
		callbackURL: callbackURL,
	}
}

// CreatePaymentSession initializes a gateway transaction funded by the most
// recent invoice message for the booking. The amount comes from the invoice
// metadata only; it fails with ErrNoInvoice when no invoice exists.
func (s *Service) CreatePaymentSession(bookingID uint, payerEmail string) (*Session, error) {
	if payerEmail == "" {
		return nil, fmt.Errorf("%w: payer email is required", store.ErrValidation)
	}

	invoice, err := s.invoices.LatestInvoice(bookingID)
	if err != nil {
		return nil, err
	}
	if invoice.Metadata == nil {
		return nil, fmt.Errorf("%w: invoice message %d has no payload", store.ErrValidation, invoice.ID)
	}

	reference := "PRT-" + uuid.New().String()
	auth, err := s.gateway.InitializeTransaction(InitializeInput{
		Email:       payerEmail,
		Amount:      invoice.Metadata.TotalAmount,
		Currency:    invoice.Metadata.Currency,
		Reference:   reference,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		return nil, err
	}

	session := &models.PaymentSession{
		BookingID:  bookingID,
		Reference:  auth.Reference,
		Amount:     invoice.Metadata.TotalAmount,
		Currency:   invoice.Metadata.Currency,
		PayerEmail: payerEmail,
		Status:     "pending",
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment session %s opened for booking %d (%s %s)",
		auth.Reference, bookingID, session.Currency, formatAmount(session.Amount))

	return &Session{
		AuthorizationURL: auth.AuthorizationURL,
		Reference:        auth.Reference,
		Amount:           session.Amount,
		Currency:         session.Currency,
	}, nil
}

// VerifyPayment confirms a transaction with the gateway and, on success,
// drives the booking to accepted. A booking already past accepted is left
// alone; the verification still succeeds.
func (s *Service) VerifyPayment(reference string) (*models.PaymentSession, error) {
	session, err := s.sessions.FindByReference(reference)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.VerifyTransaction(reference)
	if err != nil {
		return nil, err
	}

	if result.Status != "success" {
		if err := s.sessions.MarkStatus(reference, result.Status); err != nil {
			return nil, err
		}
		session.Status = result.Status
		return session, nil
	}

	// The gateway must have settled exactly what the session asked for; a
	// short or wrong-currency settlement never accepts the booking
	if result.Amount != session.Amount || result.Currency != session.Currency {
		if err := s.sessions.MarkStatus(reference, "mismatch"); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: gateway settled %s %d for session %s, expected %s %d",
			store.ErrValidation, result.Currency, result.Amount, reference, session.Currency, session.Amount)
	}

	if err := s.sessions.MarkStatus(reference, "success"); err != nil {
		return nil, err
	}
	session.Status = "success"

	if _, err := s.bookings.UpdateStatus(session.BookingID, models.BookingStatusAccepted, 0); err != nil {
		if !errors.Is(err, store.ErrInvalidTransition) {
			return nil, err
		}
		// Already accepted or further along; the payment stands
	}

	return session, nil
}

// SessionBooking resolves a payment reference to its booking so callers can
// enforce booking-level access before verification
func (s *Service) SessionBooking(reference string) (uint, error) {
	session, err := s.sessions.FindByReference(reference)
	if err != nil {
		return 0, err
	}
	return session.BookingID, nil
}

// formatAmount renders a minor-unit amount for logs
func formatAmount(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// GormSessionStore is the database-backed SessionStore
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates a session store on the given database handle
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Create(session *models.PaymentSession) error {
	if err := s.db.Create(session).Error; err != nil {
		return fmt.Errorf("creating payment session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) FindByReference(reference string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	if err := s.db.Where("reference = ?", reference).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment session %s", store.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("loading payment session: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) MarkStatus(reference, status string) error {
	if err := s.db.Model(&models.PaymentSession{}).
		Where("reference = ?", reference).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("updating payment session: %w", err)
	}
	return nil
}
