package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"edutest/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lateSubmissionGrace absorbs client clock skew and network latency before a
// non-forced submit past the time budget is rejected.
const lateSubmissionGrace = 30 * time.Second

type SubmissionService struct {
	db          *gorm.DB
	redis       *redis.Client
	assignments *AssignmentService
	hub         *MonitorHub
}

func NewSubmissionService(db *gorm.DB, redisClient *redis.Client, assignments *AssignmentService, hub *MonitorHub) *SubmissionService {
	return &SubmissionService{
		db:          db,
		redis:       redisClient,
		assignments: assignments,
		hub:         hub,
	}
}

type StartTestRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

type SubmitRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
	Forced  bool                       `json:"forced"`
}

type SaveProgressRequest struct {
	QuestionID uint            `json:"question_id" binding:"required"`
	Answer     json.RawMessage `json:"answer"`
}

// retakeGate decides whether a fresh attempt may begin given the number of
// prior terminal attempts, and numbers the new attempt. With retakes allowed,
// a student gets 1 + max_retakes attempts in total.
func retakeGate(test *models.Test, terminalAttempts int) (int, error) {
	if terminalAttempts == 0 {
		return 1, nil
	}
	if !test.AllowRetake {
		return 0, ErrRetakeLimitExceeded
	}
	if terminalAttempts > test.MaxRetakes {
		return 0, ErrRetakeLimitExceeded
	}
	return terminalAttempts + 1, nil
}

// submitDeadline is the instant after which non-forced submits are rejected,
// or nil for untimed tests. The server never runs a countdown; this is a pure
// comparison made at submit time.
func submitDeadline(test *models.Test, startedAt time.Time) *time.Time {
	if !test.IsTimed || test.DurationMinutes == nil {
		return nil
	}
	deadline := startedAt.Add(time.Duration(*test.DurationMinutes)*time.Minute + lateSubmissionGrace)
	return &deadline
}

// resolveAttempt inspects a student's prior attempts on a test. An open
// attempt is handed back as-is so retried starts stay idempotent; otherwise
// the retake gate decides whether a fresh attempt may begin and numbers it.
func resolveAttempt(test *models.Test, prior []models.Submission) (*models.Submission, int, error) {
	terminal := 0
	for i := range prior {
		if models.TerminalStatus(prior[i].Status) {
			terminal++
		} else {
			return &prior[i], 0, nil
		}
	}
	attempt, err := retakeGate(test, terminal)
	if err != nil {
		return nil, 0, err
	}
	return nil, attempt, nil
}

// submitGate validates a submit against the lifecycle rules. Only an
// in-progress attempt may submit, checked before anything else so a terminal
// attempt always reads as a state conflict rather than a late submission. A
// non-forced submit past the deadline is rejected; forced submits skip the
// time-budget check entirely.
func submitGate(submission *models.Submission, now time.Time, forced bool) error {
	if submission.Status != models.SubmissionInProgress {
		return ErrStateConflict
	}
	if forced {
		return nil
	}
	if deadline := submitDeadline(&submission.Test, submission.StartedAt); deadline != nil && now.After(*deadline) {
		return ErrLateSubmission
	}
	return nil
}

func shuffledQuestionIDs(questions []models.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

// Start opens a new attempt, or returns the student's existing open attempt
// unchanged so retried start calls stay idempotent. Eligibility is resolved
// lazily against the roster; the test's marks and presentation order are
// snapshot onto the submission.
func (s *SubmissionService) Start(testID uint, req *StartTestRequest) (*models.Submission, error) {
	var test models.Test
	err := s.db.Where("id = ?", testID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !test.IsActive {
		return nil, ErrNotEligible
	}

	if _, err := s.assignments.AssignmentFor(testID, req.StudentID); err != nil {
		return nil, err
	}

	var submission models.Submission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var prior []models.Submission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("test_id = ? AND student_id = ?", testID, req.StudentID).
			Order("attempt_number").
			Find(&prior).Error; err != nil {
			return err
		}

		existing, attempt, err := resolveAttempt(&test, prior)
		if err != nil {
			return err
		}
		if existing != nil {
			submission = *existing
			return nil
		}

		submission = models.Submission{
			TestID:        testID,
			StudentID:     req.StudentID,
			Status:        models.SubmissionInProgress,
			AttemptNumber: attempt,
			StartedAt:     time.Now(),
			TotalMarks:    questionMarksSum(test.Questions),
		}
		if test.ShuffleQuestions {
			order, _ := json.Marshal(shuffledQuestionIDs(test.Questions))
			submission.QuestionOrder = datatypes.JSON(order)
		}
		// The partial unique index on (test_id, student_id) over open
		// statuses backstops a concurrent start racing this transaction.
		return tx.Create(&submission).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToTest(testID, "submission_started", map[string]interface{}{
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
			"attempt":       submission.AttemptNumber,
		})
	}

	return &submission, nil
}

func questionMarksSum(questions []models.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Marks
	}
	return total
}

func draftKey(submissionID uint) string {
	return fmt.Sprintf("edutest:drafts:%d", submissionID)
}

// SaveProgress stores a draft answer for one question. Drafts are
// submission-scoped working state kept in Redis, not Answer rows; each save
// overwrites the prior draft for that question.
func (s *SubmissionService) SaveProgress(submissionID uint, req *SaveProgressRequest) error {
	submission, err := s.getSubmission(submissionID)
	if err != nil {
		return err
	}
	if submission.Status != models.SubmissionInProgress {
		return ErrStateConflict
	}

	var question models.Question
	if err := s.db.Where("id = ? AND test_id = ?", req.QuestionID, submission.TestID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	ctx := context.Background()
	key := draftKey(submissionID)
	if err := s.redis.HSet(ctx, key, strconv.FormatUint(uint64(req.QuestionID), 10), string(req.Answer)).Err(); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	if err := s.redis.Expire(ctx, key, draftTTL(&submission.Test)).Err(); err != nil {
		log.Printf("Failed to set draft TTL for submission %d: %v", submissionID, err)
	}
	return nil
}

// Drafts outlive the time budget by a day so a late forced submit can still
// recover them; untimed tests keep drafts for a week.
func draftTTL(test *models.Test) time.Duration {
	if test.IsTimed && test.DurationMinutes != nil {
		return time.Duration(*test.DurationMinutes)*time.Minute + 24*time.Hour
	}
	return 7 * 24 * time.Hour
}

func (s *SubmissionService) loadDrafts(submissionID uint) map[uint]json.RawMessage {
	drafts := make(map[uint]json.RawMessage)
	stored, err := s.redis.HGetAll(context.Background(), draftKey(submissionID)).Result()
	if err != nil {
		log.Printf("Failed to load drafts for submission %d: %v", submissionID, err)
		return drafts
	}
	for field, payload := range stored {
		qid, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			continue
		}
		drafts[uint(qid)] = json.RawMessage(payload)
	}
	return drafts
}

// buildAnswers materializes one Answer per question from the effective
// payload map and auto-grades each. It reports the auto-scored sum and
// whether every answer was resolved without a human.
func buildAnswers(submissionID uint, questions []models.Question, payloads map[uint]json.RawMessage) ([]models.Answer, int, bool) {
	answers := make([]models.Answer, 0, len(questions))
	score := 0
	allResolved := true

	for i := range questions {
		q := &questions[i]
		answer := models.Answer{
			SubmissionID: submissionID,
			QuestionID:   q.ID,
		}
		if payload, ok := payloads[q.ID]; ok && len(payload) > 0 {
			answer.StudentAnswer = datatypes.JSON(payload)
		}

		result := AutoGrade(q, answer.StudentAnswer)
		answer.IsCorrect = result.IsCorrect
		answer.MarksAwarded = result.MarksAwarded
		if result.MarksAwarded != nil {
			score += *result.MarksAwarded
		} else {
			allResolved = false
		}
		answers = append(answers, answer)
	}
	return answers, score, allResolved
}

// Submit drives in_progress → submitted (or straight to graded when every
// question auto-resolves). Forced submits — timer expiry or an explicit
// force — skip the time-budget check and accept partial answer sets as-is.
// A non-forced submit past the deadline is rejected so a client cannot
// quietly extend its own budget. Re-submitting a terminal submission is a
// state conflict, never a re-score.
func (s *SubmissionService) Submit(submissionID uint, req *SubmitRequest) (*models.Submission, error) {
	submission, err := s.getSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := submitGate(submission, now, req.Forced); err != nil {
		return nil, err
	}

	var questions []models.Question
	if err := s.db.Where("test_id = ?", submission.TestID).
		Order("position").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	// Redis drafts fill in anything the final payload omits; the submitted
	// map wins where both exist. A forced submit with an empty body falls
	// back entirely to drafts.
	payloads := s.loadDrafts(submissionID)
	for key, payload := range req.Answers {
		qid, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			continue
		}
		payloads[uint(qid)] = payload
	}

	answers, autoScore, allResolved := buildAnswers(submissionID, questions, payloads)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}

		submission.Status = models.SubmissionSubmitted
		submission.SubmittedAt = &now
		submission.Score = &autoScore
		if allResolved {
			// Nothing left for a human: auto-complete the attempt.
			submission.Status = models.SubmissionGraded
			submission.GradedAt = &now
		}
		return tx.Save(submission).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.redis.Del(context.Background(), draftKey(submissionID)).Err(); err != nil {
		log.Printf("Failed to purge drafts for submission %d: %v", submissionID, err)
	}

	submission.Answers = answers
	if s.hub != nil {
		event := "submission_submitted"
		if submission.Status == models.SubmissionGraded {
			event = "submission_graded"
		}
		s.hub.BroadcastToTest(submission.TestID, event, map[string]interface{}{
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
			"score":         submission.Score,
			"forced":        req.Forced,
		})
	}

	return submission, nil
}

func (s *SubmissionService) getSubmission(submissionID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Where("id = ?", submissionID).
		Preload("Test").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionService) GetSubmission(submissionID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Where("id = ?", submissionID).
		Preload("Test").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.question_id")
		}).
		Preload("Answers.Question").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionService) GetTestSubmissions(testID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.Where("test_id = ?", testID).
		Preload("Answers").
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionService) GetStudentSubmissions(studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.Where("student_id = ?", studentID).
		Preload("Test").
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}
