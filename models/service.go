package models

import (
	"time"

	"gorm.io/gorm"
)

// Service represents a protection-service tier that clients can book
type Service struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(200);not null;unique"`
	Description  string         `json:"description" gorm:"type:text"`
	BasePrice    int64          `json:"base_price" gorm:"not null"`   // minor currency units
	HourlyRate   int64          `json:"hourly_rate" gorm:"not null"`  // minor currency units
	Currency     string         `json:"currency" gorm:"type:varchar(3);not null;default:'NGN'"`
	PersonnelMin int            `json:"personnel_min" gorm:"default:1"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
