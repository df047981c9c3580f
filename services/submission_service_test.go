package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"edutest/models"

	"gorm.io/datatypes"
)

func TestRetakeGate(t *testing.T) {
	tests := []struct {
		name        string
		allowRetake bool
		maxRetakes  int
		terminal    int
		wantAttempt int
		wantErr     error
	}{
		{name: "first attempt always allowed", allowRetake: false, terminal: 0, wantAttempt: 1},
		{name: "no retakes blocks second attempt", allowRetake: false, terminal: 1, wantErr: ErrRetakeLimitExceeded},
		{name: "one retake allows second attempt", allowRetake: true, maxRetakes: 1, terminal: 1, wantAttempt: 2},
		{name: "one retake blocks third attempt", allowRetake: true, maxRetakes: 1, terminal: 2, wantErr: ErrRetakeLimitExceeded},
		{name: "two retakes allows third attempt", allowRetake: true, maxRetakes: 2, terminal: 2, wantAttempt: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			test := &models.Test{AllowRetake: tc.allowRetake, MaxRetakes: tc.maxRetakes}
			attempt, err := retakeGate(test, tc.terminal)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if attempt != tc.wantAttempt {
				t.Fatalf("expected attempt %d, got %d", tc.wantAttempt, attempt)
			}
		})
	}
}

func TestSubmitDeadline(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	duration := 30

	t.Run("untimed test has no deadline", func(t *testing.T) {
		test := &models.Test{IsTimed: false}
		if deadline := submitDeadline(test, startedAt); deadline != nil {
			t.Fatalf("expected nil deadline, got %v", deadline)
		}
	})

	t.Run("timed test without duration has no deadline", func(t *testing.T) {
		test := &models.Test{IsTimed: true}
		if deadline := submitDeadline(test, startedAt); deadline != nil {
			t.Fatalf("expected nil deadline, got %v", deadline)
		}
	})

	t.Run("deadline is duration plus grace", func(t *testing.T) {
		test := &models.Test{IsTimed: true, DurationMinutes: &duration}
		deadline := submitDeadline(test, startedAt)
		if deadline == nil {
			t.Fatal("expected a deadline")
		}
		want := startedAt.Add(30*time.Minute + lateSubmissionGrace)
		if !deadline.Equal(want) {
			t.Fatalf("expected deadline %v, got %v", want, deadline)
		}

		// One minute past the budget is late; just inside the grace is not.
		late := startedAt.Add(31*time.Minute + lateSubmissionGrace)
		if !late.After(*deadline) {
			t.Fatal("expected a submit one minute past the budget to be late")
		}
		inTime := startedAt.Add(29 * time.Minute)
		if inTime.After(*deadline) {
			t.Fatal("expected a submit inside the budget to be on time")
		}
	})
}

// Mirrors the two-question round trip: Q1 answered correctly for 2 marks, Q2
// unanswered for 3 marks, expected partial auto score 2/5.
func TestBuildAnswers_PartialSubmission(t *testing.T) {
	questions := []models.Question{
		{ID: 1, QuestionType: models.TestTypeMultipleChoice, Marks: 2,
			CorrectAnswer: datatypes.JSON(`{"index":2}`)},
		{ID: 2, QuestionType: models.TestTypeMultipleChoice, Marks: 3,
			CorrectAnswer: datatypes.JSON(`{"index":0}`)},
	}
	payloads := map[uint]json.RawMessage{
		1: json.RawMessage(`{"index":2}`),
	}

	answers, score, allResolved := buildAnswers(7, questions, payloads)
	if len(answers) != 2 {
		t.Fatalf("expected one answer per question, got %d", len(answers))
	}
	if score != 2 {
		t.Fatalf("expected partial auto score 2, got %d", score)
	}
	if !allResolved {
		t.Fatal("expected all answers resolved for an all-objective test")
	}

	q1 := answers[0]
	if q1.IsCorrect == nil || !*q1.IsCorrect || q1.MarksAwarded == nil || *q1.MarksAwarded != 2 {
		t.Fatalf("expected Q1 correct with 2 marks, got %+v", q1)
	}
	q2 := answers[1]
	if q2.IsCorrect == nil || *q2.IsCorrect || q2.MarksAwarded == nil || *q2.MarksAwarded != 0 {
		t.Fatalf("expected Q2 incorrect with 0 marks, got %+v", q2)
	}
	if len(q2.StudentAnswer) != 0 {
		t.Fatalf("expected Q2 to carry no payload, got %s", q2.StudentAnswer)
	}
}

func TestBuildAnswers_EssayStaysUngraded(t *testing.T) {
	questions := []models.Question{
		{ID: 1, QuestionType: models.TestTypeTrueFalse, Marks: 1,
			CorrectAnswer: datatypes.JSON(`{"value":true}`)},
		{ID: 2, QuestionType: models.TestTypeEssay, Marks: 5},
	}
	payloads := map[uint]json.RawMessage{
		1: json.RawMessage(`{"value":true}`),
		2: json.RawMessage(`{"text":"an essay"}`),
	}

	answers, score, allResolved := buildAnswers(7, questions, payloads)
	if allResolved {
		t.Fatal("expected an unresolved answer for the essay question")
	}
	if score != 1 {
		t.Fatalf("expected auto score 1 pending the essay, got %d", score)
	}
	essay := answers[1]
	if essay.IsCorrect != nil || essay.MarksAwarded != nil {
		t.Fatalf("expected essay answer to stay ungraded, got %+v", essay)
	}
}

func TestResolveAttempt(t *testing.T) {
	t.Run("open attempt is returned unchanged", func(t *testing.T) {
		test := &models.Test{AllowRetake: false}
		prior := []models.Submission{
			{ID: 41, Status: models.SubmissionGraded, AttemptNumber: 1},
			{ID: 42, Status: models.SubmissionInProgress, AttemptNumber: 2},
		}
		existing, _, err := resolveAttempt(test, prior)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if existing == nil || existing.ID != 42 {
			t.Fatalf("expected the open attempt 42 back, got %+v", existing)
		}
	})

	t.Run("terminal attempts number the next one", func(t *testing.T) {
		test := &models.Test{AllowRetake: true, MaxRetakes: 1}
		prior := []models.Submission{
			{ID: 41, Status: models.SubmissionGraded, AttemptNumber: 1},
		}
		existing, attempt, err := resolveAttempt(test, prior)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if existing != nil {
			t.Fatalf("expected no open attempt, got %+v", existing)
		}
		if attempt != 2 {
			t.Fatalf("expected attempt 2, got %d", attempt)
		}
	})

	t.Run("exhausted retakes refuse a new attempt", func(t *testing.T) {
		test := &models.Test{AllowRetake: false}
		prior := []models.Submission{
			{ID: 41, Status: models.SubmissionSubmitted, AttemptNumber: 1},
		}
		if _, _, err := resolveAttempt(test, prior); !errors.Is(err, ErrRetakeLimitExceeded) {
			t.Fatalf("expected ErrRetakeLimitExceeded, got %v", err)
		}
	})
}

func TestSubmitGate(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	duration := 30
	timed := models.Test{IsTimed: true, DurationMinutes: &duration}
	pastDeadline := startedAt.Add(31*time.Minute + lateSubmissionGrace)

	tests := []struct {
		name    string
		status  string
		now     time.Time
		forced  bool
		wantErr error
	}{
		{name: "in progress inside the budget", status: models.SubmissionInProgress,
			now: startedAt.Add(10 * time.Minute)},
		{name: "late without force is rejected", status: models.SubmissionInProgress,
			now: pastDeadline, wantErr: ErrLateSubmission},
		{name: "force accepts at the same late instant", status: models.SubmissionInProgress,
			now: pastDeadline, forced: true},
		{name: "submitted attempt conflicts", status: models.SubmissionSubmitted,
			now: startedAt.Add(10 * time.Minute), wantErr: ErrStateConflict},
		{name: "graded attempt conflicts even late and forced", status: models.SubmissionGraded,
			now: pastDeadline, forced: true, wantErr: ErrStateConflict},
		{name: "not started conflicts", status: models.SubmissionNotStarted,
			now: startedAt, wantErr: ErrStateConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			submission := &models.Submission{
				Status:    tc.status,
				StartedAt: startedAt,
				Test:      timed,
			}
			err := submitGate(submission, tc.now, tc.forced)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestShuffledQuestionIDs(t *testing.T) {
	questions := []models.Question{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	ids := shuffledQuestionIDs(questions)
	if len(ids) != len(questions) {
		t.Fatalf("expected %d ids, got %d", len(questions), len(ids))
	}
	seen := make(map[uint]bool)
	for _, id := range ids {
		seen[id] = true
	}
	for _, q := range questions {
		if !seen[q.ID] {
			t.Fatalf("shuffle lost question %d", q.ID)
		}
	}
}
