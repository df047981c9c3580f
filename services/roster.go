package services

import (
	"edutest/models"

	"gorm.io/gorm"
)

// Roster is the boundary to the surrounding record-management system: the
// pipeline only ever asks which classes a student currently sits in and
// whether the student is still enrolled. Resolution happens at submission
// start, never at assignment time.
type Roster interface {
	ClassIDs(studentID uint) ([]uint, error)
	IsEnrolled(studentID uint) (bool, error)
}

type dbRoster struct {
	db *gorm.DB
}

func NewDBRoster(db *gorm.DB) Roster {
	return &dbRoster{db: db}
}

func (r *dbRoster) ClassIDs(studentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ClassStudent{}).
		Where("student_id = ?", studentID).
		Pluck("class_id", &ids).Error
	return ids, err
}

func (r *dbRoster) IsEnrolled(studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Student{}).
		Where("id = ? AND is_active = ?", studentID, true).
		Count(&count).Error
	return count > 0, err
}
