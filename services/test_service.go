package services

import (
	"encoding/json"
	"errors"
	"math"

	"edutest/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestService struct {
	db *gorm.DB
}

func NewTestService(db *gorm.DB) *TestService {
	return &TestService{db: db}
}

type CreateTestRequest struct {
	Name                   string                  `json:"name" binding:"required"`
	TestType               string                  `json:"test_type" binding:"required"`
	Description            string                  `json:"description"`
	Instructions           string                  `json:"instructions"`
	CenterID               uint                    `json:"center_id" binding:"required"`
	DurationMinutes        *int                    `json:"duration_minutes"`
	PassingMarks           *int                    `json:"passing_marks"`
	IsTimed                bool                    `json:"is_timed"`
	ShuffleQuestions       bool                    `json:"shuffle_questions"`
	ShowResultsImmediately bool                    `json:"show_results_immediately"`
	AllowRetake            bool                    `json:"allow_retake"`
	MaxRetakes             int                     `json:"max_retakes"`
	AssignmentType         string                  `json:"assignment_type"`
	Questions              []CreateQuestionRequest `json:"questions" binding:"required,min=1"`
	Passages               []CreatePassageRequest  `json:"passages"`
}

type CreateQuestionRequest struct {
	Text          string          `json:"text" binding:"required"`
	QuestionType  string          `json:"question_type" binding:"required"`
	Marks         int             `json:"marks" binding:"required,min=1"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	WordLimit     *int            `json:"word_limit"`
	Position      int             `json:"position"`
}

type CreatePassageRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	Difficulty string `json:"difficulty"`
	Position   int    `json:"position"`
}

type UpdateTestRequest struct {
	Name                   string                  `json:"name"`
	Description            string                  `json:"description"`
	Instructions           string                  `json:"instructions"`
	DurationMinutes        *int                    `json:"duration_minutes"`
	PassingMarks           *int                    `json:"passing_marks"`
	IsTimed                *bool                   `json:"is_timed"`
	ShuffleQuestions       *bool                   `json:"shuffle_questions"`
	ShowResultsImmediately *bool                   `json:"show_results_immediately"`
	AllowRetake            *bool                   `json:"allow_retake"`
	MaxRetakes             *int                    `json:"max_retakes"`
	Questions              []CreateQuestionRequest `json:"questions"`
}

// validateQuestion checks that the answer key's JSON shape matches the
// question type. Subjective types carry no key; objective types must carry a
// usable one or the test is rejected up front.
func validateQuestion(req *CreateQuestionRequest) error {
	if !models.ValidTestType(req.QuestionType) {
		return validationErr("question_type", "unknown question type %q", req.QuestionType)
	}
	if req.Marks < 1 {
		return validationErr("marks", "must be a positive integer")
	}

	switch req.QuestionType {
	case models.TestTypeMultipleChoice:
		if len(req.Options) < 2 {
			return validationErr("options", "multiple_choice requires at least 2 options")
		}
		var key MultipleChoiceKey
		if err := decodeStrict(req.CorrectAnswer, &key); err != nil {
			return validationErr("correct_answer", "multiple_choice expects {index} or {indexes:[...]}")
		}
		accepted := key.acceptedIndexes()
		if len(accepted) == 0 {
			return validationErr("correct_answer", "multiple_choice requires a correct index")
		}
		for _, idx := range accepted {
			if idx < 0 || idx >= len(req.Options) {
				return validationErr("correct_answer", "index %d out of option range", idx)
			}
		}

	case models.TestTypeTrueFalse:
		var key TrueFalseAnswer
		if err := decodeStrict(req.CorrectAnswer, &key); err != nil || key.Value == nil {
			return validationErr("correct_answer", "true_false expects {value: boolean}")
		}

	case models.TestTypeShortAnswer, models.TestTypeFormFilling:
		var key TextKey
		if err := decodeStrict(req.CorrectAnswer, &key); err != nil {
			return validationErr("correct_answer", "%s expects {answers:[...]} or {keywords:[...]}", req.QuestionType)
		}
		if len(key.acceptedStrings()) == 0 {
			return validationErr("correct_answer", "%s requires at least one accepted string", req.QuestionType)
		}

	case models.TestTypeMatching:
		var key MatchingKey
		if err := decodeStrict(req.CorrectAnswer, &key); err != nil || len(key.Pairs) == 0 {
			return validationErr("correct_answer", "matching expects {pairs:[{left,right}...]}")
		}
		for _, p := range key.Pairs {
			if p.Left == "" || p.Right == "" {
				return validationErr("correct_answer", "matching pairs must have both sides")
			}
		}

	default:
		// essay, writing, reading_passage: manually graded, no key expected.
	}
	return nil
}

func totalQuestionMarks(questions []CreateQuestionRequest) int {
	total := 0
	for _, q := range questions {
		total += q.Marks
	}
	return total
}

// Default passing threshold is 60% of the total, rounded up.
func defaultPassingMarks(totalMarks int) int {
	return int(math.Ceil(0.6 * float64(totalMarks)))
}

func buildQuestion(testID uint, req *CreateQuestionRequest) models.Question {
	q := models.Question{
		TestID:       testID,
		Text:         req.Text,
		QuestionType: req.QuestionType,
		Marks:        req.Marks,
		Explanation:  req.Explanation,
		WordLimit:    req.WordLimit,
		Position:     req.Position,
	}
	if len(req.Options) > 0 {
		b, _ := json.Marshal(req.Options)
		q.Options = datatypes.JSON(b)
	}
	if len(req.CorrectAnswer) > 0 {
		q.CorrectAnswer = datatypes.JSON(req.CorrectAnswer)
	}
	return q
}

func (s *TestService) CreateTest(creatorID uint, creatorType string, req *CreateTestRequest) (*models.Test, error) {
	if !models.ValidTestType(req.TestType) {
		return nil, validationErr("test_type", "unknown test type %q", req.TestType)
	}
	for i := range req.Questions {
		if err := validateQuestion(&req.Questions[i]); err != nil {
			return nil, err
		}
	}

	totalMarks := totalQuestionMarks(req.Questions)
	passingMarks := defaultPassingMarks(totalMarks)
	if req.PassingMarks != nil {
		if *req.PassingMarks < 0 || *req.PassingMarks > totalMarks {
			return nil, validationErr("passing_marks", "must be within [0, total_marks]")
		}
		passingMarks = *req.PassingMarks
	}
	if req.IsTimed && (req.DurationMinutes == nil || *req.DurationMinutes < 1) {
		return nil, validationErr("duration_minutes", "timed tests require a positive duration")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	test := models.Test{
		Name:                   req.Name,
		TestType:               req.TestType,
		Description:            req.Description,
		Instructions:           req.Instructions,
		CenterID:               req.CenterID,
		DurationMinutes:        req.DurationMinutes,
		TotalMarks:             totalMarks,
		PassingMarks:           passingMarks,
		IsTimed:                req.IsTimed,
		ShuffleQuestions:       req.ShuffleQuestions,
		ShowResultsImmediately: req.ShowResultsImmediately,
		AllowRetake:            req.AllowRetake,
		MaxRetakes:             req.MaxRetakes,
		AssignmentType:         req.AssignmentType,
		IsActive:               true,
		CreatedByID:            creatorID,
		CreatedByType:          creatorType,
	}

	if err := tx.Create(&test).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for i := range req.Questions {
		question := buildQuestion(test.ID, &req.Questions[i])
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, pReq := range req.Passages {
		passage := models.Passage{
			TestID:     test.ID,
			Title:      pReq.Title,
			Content:    pReq.Content,
			Difficulty: pReq.Difficulty,
			Position:   pReq.Position,
		}
		if err := tx.Create(&passage).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetTestByID(test.ID)
}

func (s *TestService) GetTests(centerID uint) ([]models.Test, error) {
	var tests []models.Test
	query := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position")
	}).Preload("Passages", func(db *gorm.DB) *gorm.DB {
		return db.Order("passages.position")
	}).Order("created_at DESC")
	if centerID != 0 {
		query = query.Where("center_id = ?", centerID)
	}
	err := query.Find(&tests).Error
	return tests, err
}

func (s *TestService) GetTestByID(testID uint) (*models.Test, error) {
	var test models.Test
	err := s.db.Where("id = ?", testID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		Preload("Passages", func(db *gorm.DB) *gorm.DB {
			return db.Order("passages.position")
		}).
		First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (s *TestService) assignmentCount(testID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Assignment{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

// UpdateTest rejects edits once any assignment exists: marks a student
// already attempted under must not shift retroactively. Deactivate is the
// history-preserving way to retire an assigned test.
func (s *TestService) UpdateTest(testID uint, req *UpdateTestRequest) (*models.Test, error) {
	test, err := s.GetTestByID(testID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.assignmentCount(testID)
	if err != nil {
		return nil, err
	}
	if assigned > 0 {
		return nil, ErrStateConflict
	}

	for i := range req.Questions {
		if err := validateQuestion(&req.Questions[i]); err != nil {
			return nil, err
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if req.Name != "" {
		test.Name = req.Name
	}
	if req.Description != "" {
		test.Description = req.Description
	}
	if req.Instructions != "" {
		test.Instructions = req.Instructions
	}
	if req.DurationMinutes != nil {
		test.DurationMinutes = req.DurationMinutes
	}
	if req.IsTimed != nil {
		test.IsTimed = *req.IsTimed
	}
	if req.ShuffleQuestions != nil {
		test.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShowResultsImmediately != nil {
		test.ShowResultsImmediately = *req.ShowResultsImmediately
	}
	if req.AllowRetake != nil {
		test.AllowRetake = *req.AllowRetake
	}
	if req.MaxRetakes != nil {
		test.MaxRetakes = *req.MaxRetakes
	}

	// Replacing questions re-derives the totals.
	if req.Questions != nil {
		if err := tx.Where("test_id = ?", testID).Delete(&models.Question{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for i := range req.Questions {
			question := buildQuestion(test.ID, &req.Questions[i])
			if err := tx.Create(&question).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		test.TotalMarks = totalQuestionMarks(req.Questions)
		test.PassingMarks = defaultPassingMarks(test.TotalMarks)
	}
	if req.PassingMarks != nil {
		if *req.PassingMarks < 0 || *req.PassingMarks > test.TotalMarks {
			tx.Rollback()
			return nil, validationErr("passing_marks", "must be within [0, total_marks]")
		}
		test.PassingMarks = *req.PassingMarks
	}

	if err := tx.Save(test).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetTestByID(test.ID)
}

// DeleteTest cascades to questions and passages. Tests with submission
// history cannot be deleted; deactivate them instead.
func (s *TestService) DeleteTest(testID uint) error {
	if _, err := s.GetTestByID(testID); err != nil {
		return err
	}

	var submissions int64
	if err := s.db.Model(&models.Submission{}).Where("test_id = ?", testID).Count(&submissions).Error; err != nil {
		return err
	}
	if submissions > 0 {
		return ErrStateConflict
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("test_id = ?", testID).Delete(&models.Question{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("test_id = ?", testID).Delete(&models.Passage{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("test_id = ?", testID).Delete(&models.Assignment{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Test{}, testID).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// SetActive toggles student visibility without touching history.
func (s *TestService) SetActive(testID uint, active bool) (*models.Test, error) {
	test, err := s.GetTestByID(testID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(test).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	test.IsActive = active
	return test, nil
}

func (s *TestService) AddQuestion(testID uint, req *CreateQuestionRequest) (*models.Question, error) {
	test, err := s.GetTestByID(testID)
	if err != nil {
		return nil, err
	}
	if err := s.guardUnassigned(testID); err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	question := buildQuestion(test.ID, req)
	tx := s.db.Begin()
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&models.Test{}).Where("id = ?", testID).
		Update("total_marks", gorm.Expr("total_marks + ?", question.Marks)).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *TestService) UpdateQuestion(questionID uint, req *CreateQuestionRequest) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.guardUnassigned(question.TestID); err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	marksDelta := req.Marks - question.Marks
	updated := buildQuestion(question.TestID, req)
	updated.ID = question.ID
	updated.CreatedAt = question.CreatedAt

	tx := s.db.Begin()
	if err := tx.Save(&updated).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if marksDelta != 0 {
		if err := tx.Model(&models.Test{}).Where("id = ?", question.TestID).
			Update("total_marks", gorm.Expr("total_marks + ?", marksDelta)).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *TestService) DeleteQuestion(questionID uint) error {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.guardUnassigned(question.TestID); err != nil {
		return err
	}

	tx := s.db.Begin()
	if err := tx.Delete(&models.Question{}, questionID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&models.Test{}).Where("id = ?", question.TestID).
		Update("total_marks", gorm.Expr("total_marks - ?", question.Marks)).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (s *TestService) AddPassage(testID uint, req *CreatePassageRequest) (*models.Passage, error) {
	test, err := s.GetTestByID(testID)
	if err != nil {
		return nil, err
	}
	if err := s.guardUnassigned(testID); err != nil {
		return nil, err
	}

	passage := models.Passage{
		TestID:     test.ID,
		Title:      req.Title,
		Content:    req.Content,
		Difficulty: req.Difficulty,
		Position:   req.Position,
	}
	if err := s.db.Create(&passage).Error; err != nil {
		return nil, err
	}
	return &passage, nil
}

func (s *TestService) UpdatePassage(passageID uint, req *CreatePassageRequest) (*models.Passage, error) {
	var passage models.Passage
	if err := s.db.First(&passage, passageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.guardUnassigned(passage.TestID); err != nil {
		return nil, err
	}

	passage.Title = req.Title
	passage.Content = req.Content
	passage.Difficulty = req.Difficulty
	passage.Position = req.Position
	if err := s.db.Save(&passage).Error; err != nil {
		return nil, err
	}
	return &passage, nil
}

func (s *TestService) DeletePassage(passageID uint) error {
	var passage models.Passage
	if err := s.db.First(&passage, passageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.guardUnassigned(passage.TestID); err != nil {
		return err
	}
	return s.db.Delete(&models.Passage{}, passageID).Error
}

func (s *TestService) guardUnassigned(testID uint) error {
	assigned, err := s.assignmentCount(testID)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return ErrStateConflict
	}
	return nil
}
