package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the login principal. Role checks beyond user_type live in the
// surrounding authorization layer, not in the assessment core.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	UserType     string         `json:"user_type" gorm:"not null"` // student, teacher, superuser
	CenterID     uint           `json:"center_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
