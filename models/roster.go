package models

import (
	"time"

	"gorm.io/gorm"
)

// Student and ClassStudent are the slice of the surrounding record-management
// system the assessment pipeline reads: enrollment status and class
// membership. They are written elsewhere; the pipeline only resolves rosters
// through them at submission-start time.

type Student struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index"`
	Name      string         `json:"name" gorm:"not null"`
	CenterID  uint           `json:"center_id" gorm:"index"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type ClassStudent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClassID   uint           `json:"class_id" gorm:"not null;uniqueIndex:idx_class_student"`
	StudentID uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_class_student"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
