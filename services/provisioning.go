package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"protector-server/models"
	"protector-server/store"
	"protector-server/utils"
)

// ProvisioningService creates staff accounts. Operator accounts are only
// ever created through here by an admin, never by self-signup.
type ProvisioningService struct {
	db *gorm.DB
}

// NewProvisioningService creates a provisioning service on the given handle
func NewProvisioningService(db *gorm.DB) *ProvisioningService {
	return &ProvisioningService{db: db}
}

// ProvisionOperatorInput carries the new operator's account details
type ProvisionOperatorInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// ProvisionOperator creates an active operator account
func (s *ProvisioningService) ProvisionOperator(in ProvisionOperatorInput) (*models.User, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: full_name and email are required", store.ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", store.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: an account with email %s already exists", store.ErrValidation, email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing account: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	operator := models.User{
		FullName:     in.FullName,
		Email:        email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         models.RoleOperator,
		IsActive:     true,
	}

	if err := s.db.Create(&operator).Error; err != nil {
		return nil, fmt.Errorf("creating operator account: %w", err)
	}

	log.Printf("✅ Operator account provisioned: %s (%d)", operator.Email, operator.ID)
	return &operator, nil
}
