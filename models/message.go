package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type SenderType string

const (
	SenderClient   SenderType = "client"
	SenderOperator SenderType = "operator"
	SenderSystem   SenderType = "system"
)

// IsValid reports whether s is a known sender type
func (s SenderType) IsValid() bool {
	switch s {
	case SenderClient, SenderOperator, SenderSystem:
		return true
	default:
		return false
	}
}

type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeSystem       MessageType = "system"
	MessageTypeInvoice      MessageType = "invoice"
	MessageTypeStatusUpdate MessageType = "status_update"
)

// IsValid reports whether t is a known message type
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeSystem, MessageTypeInvoice, MessageTypeStatusUpdate:
		return true
	default:
		return false
	}
}

// InvoicePayload carries structured pricing data on invoice messages. All
// amounts are in minor currency units. TotalAmount is computed once at send
// time and never re-derived.
type InvoicePayload struct {
	BasePrice    int64  `json:"basePrice"`
	HourlyRate   int64  `json:"hourlyRate"`
	Duration     int    `json:"duration"` // hours
	VehicleFee   int64  `json:"vehicleFee"`
	PersonnelFee int64  `json:"personnelFee"`
	Currency     string `json:"currency"`
	TotalAmount  int64  `json:"totalAmount"`
}

// Total computes the invoice total from its line items
func (p InvoicePayload) Total() int64 {
	return p.BasePrice + p.HourlyRate*int64(p.Duration) + p.VehicleFee + p.PersonnelFee
}

// Value implements driver.Valuer so the payload is stored as jsonb
func (p InvoicePayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for reading the jsonb column
func (p *InvoicePayload) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return errors.New("invoice payload: unsupported column type")
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, p)
}

// Message is a chat message scoped to a booking. Messages are immutable once
// created except for the read/delivery fields. Content is the single
// canonical text column.
type Message struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	BookingID   uint            `json:"booking_id" gorm:"not null;index"`
	SenderType  SenderType      `json:"sender_type" gorm:"type:varchar(20);not null;check:sender_type IN ('client','operator','system')"`
	SenderID    uint            `json:"sender_id"`
	RecipientID uint            `json:"recipient_id"`
	Content     string          `json:"content" gorm:"type:text;not null"`
	Type        MessageType     `json:"message_type" gorm:"column:message_type;type:varchar(20);not null;default:'text';check:message_type IN ('text','system','invoice','status_update')"`
	Metadata    *InvoicePayload `json:"metadata,omitempty" gorm:"type:jsonb"`
	RequestID   string          `json:"request_id,omitempty" gorm:"size:64;index"`
	IsRead      bool            `json:"is_read" gorm:"default:false"`
	ReadAt      *time.Time      `json:"read_at"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
