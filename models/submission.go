package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubmissionNotStarted = "not_started"
	SubmissionInProgress = "in_progress"
	SubmissionSubmitted  = "submitted"
	SubmissionGraded     = "graded"
)

// TerminalStatus reports whether a submission can no longer change state on
// the student side. Only terminal attempts count against the retake limit.
func TerminalStatus(status string) bool {
	return status == SubmissionSubmitted || status == SubmissionGraded
}

// Submission is one student's attempt against a test. TotalMarks is snapshot
// from the test at start time so later re-authoring cannot shift the scale a
// student attempted under. QuestionOrder snapshots the shuffled presentation
// order for the attempt when the test shuffles questions.
//
// The partial unique index keeps at most one non-terminal attempt per
// (test, student); Start relies on it as the backstop against concurrent
// double-starts.
type Submission struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TestID        uint           `json:"test_id" gorm:"not null;index;uniqueIndex:idx_open_attempt,where:(status = 'not_started' OR status = 'in_progress') AND deleted_at IS NULL"`
	StudentID     uint           `json:"student_id" gorm:"not null;index;uniqueIndex:idx_open_attempt,where:(status = 'not_started' OR status = 'in_progress') AND deleted_at IS NULL"`
	Status        string         `json:"status" gorm:"not null;default:'not_started'"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null;default:1"`
	StartedAt     time.Time      `json:"started_at"`
	SubmittedAt   *time.Time     `json:"submitted_at"`
	GradedAt      *time.Time     `json:"graded_at"`
	GradedByID    *uint          `json:"graded_by_id"`
	GradedByType  string         `json:"graded_by_type"`
	Score         *int           `json:"score"`
	TotalMarks    int            `json:"total_marks" gorm:"not null"`
	QuestionOrder datatypes.JSON `json:"question_order,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Test    Test     `json:"test,omitempty"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID"`
}
