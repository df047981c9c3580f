package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AssignedToStudent = "student"
	AssignedToClass   = "class"
	// AssignedToAll is stored as a single row with AssignedToID=0 and is
	// resolved lazily at start time, so enrollment changes stay honored.
	AssignedToAll = "all"
)

func ValidAssignedToType(t string) bool {
	return t == AssignedToStudent || t == AssignedToClass || t == AssignedToAll
}

// Assignment directs a test at a student, a class, or every enrolled student.
// One row per (test, target); re-assigning the same target updates the due
// date and mandatory flag instead of duplicating.
type Assignment struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	TestID         uint           `json:"test_id" gorm:"not null;uniqueIndex:idx_assignment_target"`
	AssignedToType string         `json:"assigned_to_type" gorm:"not null;uniqueIndex:idx_assignment_target"`
	AssignedToID   uint           `json:"assigned_to_id" gorm:"not null;uniqueIndex:idx_assignment_target"`
	DueDate        *time.Time     `json:"due_date"`
	IsMandatory    bool           `json:"is_mandatory" gorm:"not null;default:false"`
	AssignedByID   uint           `json:"assigned_by_id" gorm:"not null"`
	AssignedByType string         `json:"assigned_by_type" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Test Test `json:"test,omitempty"`
}
