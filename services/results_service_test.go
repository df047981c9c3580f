package services

import (
	"testing"

	"edutest/models"
)

func gradedSubmission(score, totalMarks int) models.Submission {
	return models.Submission{
		Status:     models.SubmissionGraded,
		Score:      intPtr(score),
		TotalMarks: totalMarks,
	}
}

func TestAggregateTestResults(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		got := aggregateTestResults(1, 6, nil)
		if got.TotalSubmissions != 0 || got.PassedCount != 0 || got.AveragePercentage != 0 {
			t.Fatalf("expected zeroed results, got %+v", got)
		}
	})

	t.Run("passed count and average", func(t *testing.T) {
		graded := []models.Submission{
			gradedSubmission(10, 10), // 100%, pass
			gradedSubmission(6, 10),  // 60%, pass at threshold
			gradedSubmission(5, 10),  // 50%, fail
			gradedSubmission(3, 10),  // 30%, fail
		}
		got := aggregateTestResults(1, 6, graded)
		if got.TotalSubmissions != 4 {
			t.Fatalf("expected 4 submissions, got %d", got.TotalSubmissions)
		}
		if got.PassedCount != 2 {
			t.Fatalf("expected 2 passes, got %d", got.PassedCount)
		}
		if got.AveragePercentage != 60.0 {
			t.Fatalf("expected average 60.0, got %v", got.AveragePercentage)
		}
	})

	t.Run("percentages use each attempt's own snapshot", func(t *testing.T) {
		graded := []models.Submission{
			gradedSubmission(5, 10), // 50%
			gradedSubmission(5, 20), // 25%
		}
		got := aggregateTestResults(1, 5, graded)
		if got.AveragePercentage != 37.5 {
			t.Fatalf("expected average 37.5, got %v", got.AveragePercentage)
		}
	})

	t.Run("nil score counts as zero", func(t *testing.T) {
		graded := []models.Submission{
			{Status: models.SubmissionGraded, TotalMarks: 10},
		}
		got := aggregateTestResults(1, 0, graded)
		if got.PassedCount != 1 {
			// passing_marks of 0 means a zero score still passes
			t.Fatalf("expected pass at zero threshold, got %+v", got)
		}
		if got.AveragePercentage != 0 {
			t.Fatalf("expected average 0, got %v", got.AveragePercentage)
		}
	})
}
