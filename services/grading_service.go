package services

import (
	"errors"
	"time"

	"edutest/models"

	"gorm.io/gorm"
)

type GradingService struct {
	db  *gorm.DB
	hub *MonitorHub
}

func NewGradingService(db *gorm.DB, hub *MonitorHub) *GradingService {
	return &GradingService{db: db, hub: hub}
}

type GradeSubmissionRequest struct {
	AnswerGrades []AnswerGrade `json:"answer_grades" binding:"required,min=1"`
	GradedBy     uint          `json:"graded_by" binding:"required"`
	GradedByType string        `json:"graded_by_type"`
}

type AnswerGrade struct {
	QuestionID   uint   `json:"question_id" binding:"required"`
	MarksAwarded int    `json:"marks_obtained"`
	Feedback     string `json:"feedback"`
}

func clampMarks(marks, max int) int {
	if marks < 0 {
		return 0
	}
	if marks > max {
		return max
	}
	return marks
}

// recomputeScore sums awarded marks across all answers, clamped to the
// submission's snapshot total. Answers still ungraded (nil marks) contribute
// nothing; the service never invents a score for a subjective answer the
// grader skipped.
func recomputeScore(answers []models.Answer, totalMarks int) int {
	score := 0
	for i := range answers {
		if answers[i].MarksAwarded != nil {
			score += *answers[i].MarksAwarded
		}
	}
	return clampMarks(score, totalMarks)
}

// GradeSubmission applies a teacher's marks and feedback, then finalizes the
// submission. Marks clamp to [0, question.marks]. Auto-graded answers not
// named in the request keep their auto marks. The whole call is atomic: one
// unknown question id fails everything. Re-grading an already graded
// submission is permitted and overwrites last-write-wins.
func (s *GradingService) GradeSubmission(submissionID uint, req *GradeSubmissionRequest) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Where("id = ?", submissionID).
		Preload("Answers").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if submission.Status != models.SubmissionSubmitted && submission.Status != models.SubmissionGraded {
		return nil, ErrStateConflict
	}

	var questions []models.Question
	if err := s.db.Where("test_id = ?", submission.TestID).Find(&questions).Error; err != nil {
		return nil, err
	}
	questionByID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}
	answerByQuestion := make(map[uint]*models.Answer, len(submission.Answers))
	for i := range submission.Answers {
		answerByQuestion[submission.Answers[i].QuestionID] = &submission.Answers[i]
	}

	// Validate the whole batch before touching anything.
	for _, grade := range req.AnswerGrades {
		if _, ok := questionByID[grade.QuestionID]; !ok {
			return nil, validationErr("question_id", "question %d is not part of this test", grade.QuestionID)
		}
		if _, ok := answerByQuestion[grade.QuestionID]; !ok {
			return nil, validationErr("question_id", "no answer recorded for question %d", grade.QuestionID)
		}
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, grade := range req.AnswerGrades {
			answer := answerByQuestion[grade.QuestionID]
			question := questionByID[grade.QuestionID]

			marks := clampMarks(grade.MarksAwarded, question.Marks)
			answer.MarksAwarded = &marks
			answer.Feedback = grade.Feedback
			if err := tx.Model(&models.Answer{}).Where("id = ?", answer.ID).
				Updates(map[string]interface{}{
					"marks_awarded": marks,
					"feedback":      grade.Feedback,
				}).Error; err != nil {
				return err
			}
		}

		score := recomputeScore(submission.Answers, submission.TotalMarks)
		submission.Score = &score
		submission.Status = models.SubmissionGraded
		submission.GradedAt = &now
		submission.GradedByID = &req.GradedBy
		submission.GradedByType = req.GradedByType
		return tx.Save(&submission).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToTest(submission.TestID, "submission_graded", map[string]interface{}{
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
			"score":         submission.Score,
			"graded_by":     req.GradedBy,
		})
	}

	return &submission, nil
}
