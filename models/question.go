package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question belongs exclusively to its Test and is removed with it.
// Options holds an ordered JSON array of option texts (multiple_choice and
// true_false only). CorrectAnswer holds the answer key, whose JSON shape is
// dictated by QuestionType; essay and writing questions carry no key.
type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TestID        uint           `json:"test_id" gorm:"not null;index"`
	Text          string         `json:"text" gorm:"not null"`
	QuestionType  string         `json:"question_type" gorm:"not null"`
	Marks         int            `json:"marks" gorm:"not null"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer datatypes.JSON `json:"correct_answer,omitempty"`
	Explanation   string         `json:"explanation"`
	WordLimit     *int           `json:"word_limit,omitempty"`
	Position      int            `json:"position" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Test Test `json:"test,omitempty"`
}
