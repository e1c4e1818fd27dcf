package models

import (
	"time"
)

// PaymentSession tracks a payment-gateway transaction initiated from an
// invoice message. The reference is the key the gateway reports back on
// verification.
type PaymentSession struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"not null;index"`
	Reference  string    `json:"reference" gorm:"size:64;uniqueIndex;not null"`
	Amount     int64     `json:"amount" gorm:"not null"` // minor currency units
	Currency   string    `json:"currency" gorm:"type:varchar(3);not null"`
	PayerEmail string    `json:"payer_email" gorm:"size:255;not null"`
	Status     string    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the PaymentSession model
func (PaymentSession) TableName() string {
	return "payment_sessions"
}
