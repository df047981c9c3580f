package services

import (
	"errors"
	"time"

	"edutest/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentService struct {
	db     *gorm.DB
	roster Roster
}

func NewAssignmentService(db *gorm.DB, roster Roster) *AssignmentService {
	return &AssignmentService{db: db, roster: roster}
}

type AssignTestRequest struct {
	Assignments []AssignmentTarget `json:"assignments" binding:"required,min=1"`
}

type AssignmentTarget struct {
	AssignedToType string     `json:"assigned_to_type" binding:"required"`
	AssignedToID   uint       `json:"assigned_to_id"`
	DueDate        *time.Time `json:"due_date"`
	IsMandatory    bool       `json:"is_mandatory"`
}

// AssignTest fans one request out to assignment rows, one per explicit
// target. Class and all-student targets stay as single rows resolved against
// the roster at start time, so membership and enrollment changes after the
// fan-out are honored without re-running it. Repeating a (test, target) pair
// updates the due date and mandatory flag in place.
func (s *AssignmentService) AssignTest(testID uint, assignerID uint, assignerType string, req *AssignTestRequest) ([]models.Assignment, error) {
	var test models.Test
	if err := s.db.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for _, target := range req.Assignments {
		if !models.ValidAssignedToType(target.AssignedToType) {
			return nil, validationErr("assigned_to_type", "must be student, class or all")
		}
		if target.AssignedToType != models.AssignedToAll && target.AssignedToID == 0 {
			return nil, validationErr("assigned_to_id", "required for %s targets", target.AssignedToType)
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	created := make([]models.Assignment, 0, len(req.Assignments))
	for _, target := range req.Assignments {
		assignment := models.Assignment{
			TestID:         testID,
			AssignedToType: target.AssignedToType,
			AssignedToID:   target.AssignedToID,
			DueDate:        target.DueDate,
			IsMandatory:    target.IsMandatory,
			AssignedByID:   assignerID,
			AssignedByType: assignerType,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "test_id"}, {Name: "assigned_to_type"}, {Name: "assigned_to_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"due_date", "is_mandatory", "assigned_by_id", "assigned_by_type", "updated_at"}),
		}).Create(&assignment).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		created = append(created, assignment)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return created, nil
}

// GetAssignedTests resolves the assigned-test list for a student, teacher or
// class. Student resolution is the lazy path: direct rows, class rows
// matching current membership, and all-student rows.
func (s *AssignmentService) GetAssignedTests(targetType string, targetID uint) ([]models.Test, error) {
	switch targetType {
	case "student":
		return s.testsForStudent(targetID)
	case "teacher":
		var tests []models.Test
		err := s.db.Where("created_by_id = ? AND created_by_type = ?", targetID, "teacher").
			Preload("Assignments").
			Order("created_at DESC").
			Find(&tests).Error
		return tests, err
	case "class":
		var tests []models.Test
		err := s.db.
			Joins("JOIN assignments ON assignments.test_id = tests.id AND assignments.deleted_at IS NULL").
			Where("assignments.assigned_to_type = ? AND assignments.assigned_to_id = ?", models.AssignedToClass, targetID).
			Order("tests.created_at DESC").
			Find(&tests).Error
		return tests, err
	default:
		return nil, validationErr("type", "must be student, teacher or class")
	}
}

func (s *AssignmentService) testsForStudent(studentID uint) ([]models.Test, error) {
	assignments, err := s.assignmentsCovering(studentID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []models.Test{}, nil
	}

	testIDs := make([]uint, 0, len(assignments))
	seen := make(map[uint]bool)
	for _, a := range assignments {
		if !seen[a.TestID] {
			seen[a.TestID] = true
			testIDs = append(testIDs, a.TestID)
		}
	}

	var tests []models.Test
	err = s.db.Where("id IN ? AND is_active = ?", testIDs, true).
		Order("created_at DESC").
		Find(&tests).Error
	return tests, err
}

// assignmentsCovering returns every assignment row that reaches the student:
// direct, via current class membership, or all-students.
func (s *AssignmentService) assignmentsCovering(studentID uint) ([]models.Assignment, error) {
	classIDs, err := s.roster.ClassIDs(studentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.roster.IsEnrolled(studentID)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("assigned_to_type = ? AND assigned_to_id = ?", models.AssignedToStudent, studentID).
		Or("assigned_to_type = ?", models.AssignedToAll)
	if len(classIDs) > 0 {
		query = query.Or("assigned_to_type = ? AND assigned_to_id IN ?", models.AssignedToClass, classIDs)
	}

	var assignments []models.Assignment
	if err := s.db.Where(query).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return coveringAssignments(assignments, enrolled), nil
}

// coveringAssignments drops all-students rows for a student who is no longer
// actively enrolled: those rows resolve against the current enrollment at
// start time, so a deactivated student falls out of them. Rows naming the
// student or their class directly still apply.
func coveringAssignments(assignments []models.Assignment, enrolled bool) []models.Assignment {
	if enrolled {
		return assignments
	}
	kept := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.AssignedToType != models.AssignedToAll {
			kept = append(kept, a)
		}
	}
	return kept
}

// AssignmentFor reports the assignment covering (test, student), or
// ErrNotEligible when none does. SubmissionService consults it at start time.
func (s *AssignmentService) AssignmentFor(testID, studentID uint) (*models.Assignment, error) {
	assignments, err := s.assignmentsCovering(studentID)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].TestID == testID {
			return &assignments[i], nil
		}
	}
	return nil, ErrNotEligible
}
