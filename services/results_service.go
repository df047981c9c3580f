package services

import (
	"math"

	"edutest/models"

	"gorm.io/gorm"
)

// ResultsService is read-only reporting over finalized submissions. Nothing
// is cached; volumes are small and every call recomputes from current state.
type ResultsService struct {
	db *gorm.DB
}

func NewResultsService(db *gorm.DB) *ResultsService {
	return &ResultsService{db: db}
}

type TestResults struct {
	TestID            uint    `json:"test_id"`
	TotalSubmissions  int     `json:"total_submissions"`
	PassedCount       int     `json:"passed_count"`
	AveragePercentage float64 `json:"average_percentage"`
}

type StudentResult struct {
	SubmissionID  uint     `json:"submission_id"`
	TestID        uint     `json:"test_id"`
	TestName      string   `json:"test_name"`
	AttemptNumber int      `json:"attempt_number"`
	Status        string   `json:"status"`
	Score         *int     `json:"score"`
	TotalMarks    int      `json:"total_marks"`
	Percentage    *float64 `json:"percentage"`
	SubmittedAt   string   `json:"submitted_at,omitempty"`
}

// aggregateTestResults folds graded submissions into the per-test summary.
// Pass/fail compares each score against the passing threshold; percentages
// use each submission's own marks snapshot.
func aggregateTestResults(testID uint, passingMarks int, graded []models.Submission) TestResults {
	results := TestResults{TestID: testID, TotalSubmissions: len(graded)}
	if len(graded) == 0 {
		return results
	}

	sum := 0.0
	for i := range graded {
		score := 0
		if graded[i].Score != nil {
			score = *graded[i].Score
		}
		if score >= passingMarks {
			results.PassedCount++
		}
		if graded[i].TotalMarks > 0 {
			sum += float64(score) / float64(graded[i].TotalMarks) * 100
		}
	}
	results.AveragePercentage = math.Round(sum/float64(len(graded))*100) / 100
	return results
}

func (s *ResultsService) GetTestResults(testID uint) (*TestResults, error) {
	var test models.Test
	if err := s.db.First(&test, testID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var graded []models.Submission
	if err := s.db.Where("test_id = ? AND status = ?", testID, models.SubmissionGraded).
		Find(&graded).Error; err != nil {
		return nil, err
	}

	results := aggregateTestResults(testID, test.PassingMarks, graded)
	return &results, nil
}

func (s *ResultsService) GetStudentResults(studentID uint) ([]StudentResult, error) {
	var submissions []models.Submission
	err := s.db.Where("student_id = ? AND status IN ?", studentID,
		[]string{models.SubmissionSubmitted, models.SubmissionGraded}).
		Preload("Test").
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	results := make([]StudentResult, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		result := StudentResult{
			SubmissionID:  sub.ID,
			TestID:        sub.TestID,
			TestName:      sub.Test.Name,
			AttemptNumber: sub.AttemptNumber,
			Status:        sub.Status,
			Score:         sub.Score,
			TotalMarks:    sub.TotalMarks,
		}
		if sub.Score != nil && sub.TotalMarks > 0 {
			pct := math.Round(float64(*sub.Score)/float64(sub.TotalMarks)*10000) / 100
			result.Percentage = &pct
		}
		if sub.SubmittedAt != nil {
			result.SubmittedAt = sub.SubmittedAt.Format("2006-01-02 15:04:05")
		}
		results = append(results, result)
	}
	return results, nil
}
