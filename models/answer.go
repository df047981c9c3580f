package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer is one question's materialized response inside a submission, created
// at submit time. StudentAnswer carries the raw JSON payload; its shape is
// dictated by the question type. IsCorrect and MarksAwarded stay nil for
// subjective types until a grader records marks.
type Answer struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SubmissionID  uint           `json:"submission_id" gorm:"not null;uniqueIndex:idx_submission_question"`
	QuestionID    uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_submission_question"`
	StudentAnswer datatypes.JSON `json:"student_answer,omitempty"`
	IsCorrect     *bool          `json:"is_correct"`
	MarksAwarded  *int           `json:"marks_awarded"`
	Feedback      string         `json:"feedback"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Submission Submission `json:"submission,omitempty"`
	Question   Question   `json:"question,omitempty"`
}
