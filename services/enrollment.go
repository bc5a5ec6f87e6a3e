package services

import (
	"classboard/database"
	"classboard/models"
	"classboard/utils"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// codeGenerationAttempts bounds the retry-on-collision loop when picking a
// globally unique enrollment code.
const codeGenerationAttempts = 5

// EnsureEnrollmentCode lazily provisions a code for a classroom that has
// none yet. It is idempotent and not a user action: any edit-capable flow
// that observes the absence calls it. When the store has no enrollment_code
// column at all this is a no-op (degraded-compatibility mode).
func EnsureEnrollmentCode(db *gorm.DB, classroom *models.Classroom) error {
	if !database.Capabilities.ClassroomEnrollmentCode {
		return nil
	}
	if classroom.EnrollmentCode != nil {
		return nil
	}
	return assignFreshCode(db, classroom)
}

// RegenerateEnrollmentCode replaces the classroom's code with a freshly
// generated one. The old code stops working immediately.
func RegenerateEnrollmentCode(db *gorm.DB, classroom *models.Classroom) error {
	if !database.Capabilities.ClassroomEnrollmentCode {
		return nil
	}
	return assignFreshCode(db, classroom)
}

// assignFreshCode generates, checks for collisions and writes a new code.
// The enrollment_code column carries a unique index, so the pre-check plus
// write-retry keeps codes globally unique across classrooms.
func assignFreshCode(db *gorm.DB, classroom *models.Classroom) error {
	for i := 0; i < codeGenerationAttempts; i++ {
		code := utils.GenerateEnrollmentCode()
		// Regeneration must never hand back the code it is replacing.
		if classroom.EnrollmentCode != nil && code == *classroom.EnrollmentCode {
			continue
		}

		var taken int64
		if err := db.Model(&models.Classroom{}).
			Where("enrollment_code = ? AND id <> ?", code, classroom.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			continue
		}

		if err := db.Model(classroom).Update("enrollment_code", code).Error; err != nil {
			// The unique index caught a concurrent writer taking the same
			// code; try the next candidate. Anything else is a real failure,
			// not a collision.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		classroom.EnrollmentCode = &code
		return nil
	}
	return ErrCodeGenerationExhausted
}

// Enroll redeems an enrollment code for a student. Outcomes:
//   - ErrNotFound when the classroom does not resolve
//   - ErrInvalidEnrollmentCode on a code mismatch (exact, case-sensitive)
//   - ErrAlreadyEnrolled when the student is already in; the existing row is
//     returned and no duplicate is created
//   - otherwise the new enrollment row, with a best-effort audit entry
//
// When the store predates the enrollment_code column, verification is
// skipped entirely. That fallback exists for incrementally provisioned
// stores and should not be relied on.
func Enroll(db *gorm.DB, studentID, classroomID uint, submittedCode string) (*models.Enrollment, error) {
	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if database.Capabilities.ClassroomEnrollmentCode && classroom.EnrollmentCode != nil {
		if submittedCode != *classroom.EnrollmentCode {
			return nil, ErrInvalidEnrollmentCode
		}
	}

	var existing models.Enrollment
	err := db.Where("classroom_id = ? AND student_id = ?", classroomID, studentID).
		First(&existing).Error
	if err == nil {
		return &existing, ErrAlreadyEnrolled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := models.Enrollment{
		ClassroomID: classroomID,
		StudentID:   studentID,
		EnrolledAt:  time.Now(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		LogActivity(tx, classroom.ID, studentID, ActivityEnrollment,
			fmt.Sprintf("student %d enrolled in classroom %q", studentID, classroom.Name),
			map[string]interface{}{"classroom_id": classroom.ID})
		return nil
	})
	if err != nil {
		// The unique (classroom_id, student_id) index resolves the race of
		// two simultaneous enrollments; re-read before giving up.
		if readErr := db.Where("classroom_id = ? AND student_id = ?", classroomID, studentID).
			First(&existing).Error; readErr == nil {
			return &existing, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return &enrollment, nil
}

// IsEnrolled reports whether the student has an enrollment in the classroom.
func IsEnrolled(db *gorm.DB, studentID, classroomID uint) bool {
	var count int64
	db.Model(&models.Enrollment{}).
		Where("classroom_id = ? AND student_id = ?", classroomID, studentID).
		Count(&count)
	return count > 0
}
