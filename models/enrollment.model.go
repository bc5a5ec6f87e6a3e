package models

import (
	"time"

	"gorm.io/gorm"
)

type Enrollment struct {
	gorm.Model
	ClassroomID uint      `json:"classroom_id" gorm:"uniqueIndex:idx_enrollment_classroom_student;not null"`
	StudentID   uint      `json:"student_id" gorm:"uniqueIndex:idx_enrollment_classroom_student;not null"`
	EnrolledAt  time.Time `json:"enrolled_at"`
	Classroom   Classroom `json:"classroom,omitempty" gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE"`
	Student     User      `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}
