package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEmailRequired is returned when an account is created without an email address.
var ErrEmailRequired = errors.New("email address is required")

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool           `gorm:"not null" json:"is_staff"`
	IsSuperuser  bool           `gorm:"not null" json:"is_superuser"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NormalizeEmail lower-cases the domain part of the address. The local part
// keeps whatever case the user typed: "Test2@Example.com" becomes
// "Test2@example.com".
func NormalizeEmail(email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email, nil
	}
	return email[:at+1] + strings.ToLower(email[at+1:]), nil
}
