package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"protector-server/models"
	"protector-server/store"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening gorm: %v", err)
	}
	return db, mock
}

func TestProvisionOperatorValidation(t *testing.T) {
	db, _ := newTestDB(t)
	s := NewProvisioningService(db)

	_, err := s.ProvisionOperator(ProvisionOperatorInput{Email: "ops@example.com", Password: "longenough1"})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("missing name should fail validation, got %v", err)
	}

	_, err = s.ProvisionOperator(ProvisionOperatorInput{FullName: "Ade Balogun", Email: "ops@example.com", Password: "short"})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("short password should fail validation, got %v", err)
	}
}

func TestProvisionOperatorDuplicateEmail(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewProvisioningService(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE email = \$1`).
		WithArgs("ops@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(4, "ops@example.com"))

	_, err := s.ProvisionOperator(ProvisionOperatorInput{
		FullName: "Ade Balogun",
		Email:    "Ops@Example.com",
		Password: "longenough1",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("duplicate email should fail validation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProvisionOperatorCreatesActiveAccount(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewProvisioningService(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE email = \$1`).
		WithArgs("ops@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	operator, err := s.ProvisionOperator(ProvisionOperatorInput{
		FullName:    "Ade Balogun",
		Email:       "Ops@Example.com",
		PhoneNumber: "+2348012345678",
		Password:    "longenough1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if operator.Role != models.RoleOperator {
		t.Errorf("role = %s, want operator", operator.Role)
	}
	if !operator.IsActive {
		t.Error("provisioned operator should be active")
	}
	if operator.Email != "ops@example.com" {
		t.Errorf("email should be lowercased, got %q", operator.Email)
	}
	if operator.PasswordHash == "" || operator.PasswordHash == "longenough1" {
		t.Error("password must be stored hashed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
