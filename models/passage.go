package models

import (
	"time"

	"gorm.io/gorm"
)

// Passage is reading material for reading_passage tests. Questions reference
// passages logically through the shared test, not by foreign key.
type Passage struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	TestID     uint           `json:"test_id" gorm:"not null;index"`
	Title      string         `json:"title" gorm:"not null"`
	Content    string         `json:"content" gorm:"not null"`
	Difficulty string         `json:"difficulty"`
	Position   int            `json:"position" gorm:"not null;default:0"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Test Test `json:"test,omitempty"`
}
