package models

import (
	"time"

	"gorm.io/gorm"
)

// TestType values mirror the question types a test can nominally hold.
// Mixed tests may still attach questions of other types.
const (
	TestTypeMultipleChoice = "multiple_choice"
	TestTypeEssay          = "essay"
	TestTypeShortAnswer    = "short_answer"
	TestTypeTrueFalse      = "true_false"
	TestTypeFormFilling    = "form_filling"
	TestTypeReadingPassage = "reading_passage"
	TestTypeWriting        = "writing"
	TestTypeMatching       = "matching"
)

func ValidTestType(t string) bool {
	switch t {
	case TestTypeMultipleChoice, TestTypeEssay, TestTypeShortAnswer, TestTypeTrueFalse,
		TestTypeFormFilling, TestTypeReadingPassage, TestTypeWriting, TestTypeMatching:
		return true
	}
	return false
}

type Test struct {
	ID                     uint           `json:"id" gorm:"primaryKey"`
	Name                   string         `json:"name" gorm:"not null"`
	TestType               string         `json:"test_type" gorm:"not null"`
	Description            string         `json:"description"`
	Instructions           string         `json:"instructions"`
	CenterID               uint           `json:"center_id" gorm:"not null;index"`
	DurationMinutes        *int           `json:"duration_minutes"` // nil when untimed
	TotalMarks             int            `json:"total_marks" gorm:"not null;default:0"`
	PassingMarks           int            `json:"passing_marks" gorm:"not null;default:0"`
	IsTimed                bool           `json:"is_timed" gorm:"not null;default:false"`
	ShuffleQuestions       bool           `json:"shuffle_questions" gorm:"not null;default:false"`
	ShowResultsImmediately bool           `json:"show_results_immediately" gorm:"not null;default:false"`
	AllowRetake            bool           `json:"allow_retake" gorm:"not null;default:false"`
	MaxRetakes             int            `json:"max_retakes" gorm:"not null;default:0"`
	AssignmentType         string         `json:"assignment_type"`
	IsActive               bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedByID            uint           `json:"created_by_id" gorm:"not null"`
	CreatedByType          string         `json:"created_by_type" gorm:"not null"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions   []Question   `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	Passages    []Passage    `json:"passages,omitempty" gorm:"foreignKey:TestID"`
	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:TestID"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:TestID"`
}
