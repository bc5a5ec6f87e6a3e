package models

import (
	"gorm.io/gorm"
)

type Classroom struct {
	gorm.Model
	Name        string  `json:"name" gorm:"not null"`
	Description string  `json:"description"`
	TeacherID   uint    `json:"teacher_id" gorm:"index;not null"`
	// EnrollmentCode is the self-service join credential. Nil until the first
	// edit-capable flow provisions one.
	EnrollmentCode *string `json:"enrollment_code,omitempty" gorm:"uniqueIndex;size:8"`
	Teacher        User    `json:"-" gorm:"foreignKey:TeacherID"`
}
