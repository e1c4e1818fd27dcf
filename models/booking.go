package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusEnRoute   BookingStatus = "en_route"
	BookingStatusArrived   BookingStatus = "arrived"
	BookingStatusInService BookingStatus = "in_service"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// statusRank orders the forward-only lifecycle. Cancelled is not ranked
// because it is reachable from any non-terminal state.
var statusRank = map[BookingStatus]int{
	BookingStatusPending:   0,
	BookingStatusAccepted:  1,
	BookingStatusEnRoute:   2,
	BookingStatusArrived:   3,
	BookingStatusInService: 4,
	BookingStatusCompleted: 5,
}

// IsValid reports whether s is a known booking status
func (s BookingStatus) IsValid() bool {
	if s == BookingStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransition reports whether a booking may move from one status to another.
// The lifecycle only moves forward; cancellation is allowed from any
// non-terminal state.
func CanTransition(from, to BookingStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == BookingStatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

type Booking struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	BookingCode   string        `json:"booking_code" gorm:"size:20;uniqueIndex;not null"`
	ClientID      uint          `json:"client_id" gorm:"not null"`
	ServiceID     uint          `json:"service_id" gorm:"not null"`
	OperatorID    *uint         `json:"operator_id"` // assigned on acceptance
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';check:status IN ('pending','accepted','en_route','arrived','in_service','completed','cancelled')"`
	PickupAddress string        `json:"pickup_address" gorm:"size:500;not null"`
	Destination   *string       `json:"destination" gorm:"size:500"`
	ScheduledDate time.Time     `json:"scheduled_date" gorm:"not null"`
	ScheduledTime string        `json:"scheduled_time" gorm:"size:20;not null"`
	DurationHours int           `json:"duration_hours" gorm:"default:1"`
	Notes         *string       `json:"notes" gorm:"size:1000"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Client  User    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// StatusTransition is emitted once per successful status change. TransitionID
// uniquely identifies the event so downstream consumers can deduplicate.
type StatusTransition struct {
	TransitionID string        `json:"transition_id"`
	BookingID    uint          `json:"booking_id"`
	ClientID     uint          `json:"client_id"`
	OperatorID   uint          `json:"operator_id"`
	From         BookingStatus `json:"from"`
	To           BookingStatus `json:"to"`
	OccurredAt   time.Time     `json:"occurred_at"`
}
