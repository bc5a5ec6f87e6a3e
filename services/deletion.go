package services

import (
	"classboard/database"
	"classboard/models"
	"classboard/policy"
	"classboard/storage"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// DeleteLesson removes a lesson together with every submission referencing
// it, as one transaction. Stored files are only removed after a successful
// commit: file deletion cannot be rolled back, so it is the last,
// non-reversible step. A crash between commit and removal leaves an orphan
// file, which the sweeper bounds.
func DeleteLesson(db *gorm.DB, files storage.FileStore, actor policy.Actor, lessonID uint) error {
	var pending []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, lessonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var classroom models.Classroom
		if err := tx.First(&classroom, lesson.ClassroomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if d := policy.Decide(actor, policy.ActionDeleteLesson, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
			log.Printf("denied delete_lesson: user=%d role=%s lesson=%d reason=%s",
				actor.ID, actor.Role, lesson.ID, d.Reason)
			return ErrForbidden
		}

		var submissions []models.Submission
		if err := tx.Where("lesson_id = ?", lesson.ID).Find(&submissions).Error; err != nil {
			return err
		}
		for _, s := range submissions {
			if s.FilePath != "" {
				pending = append(pending, s.FilePath)
			}
		}

		if err := tx.Unscoped().Where("lesson_id = ?", lesson.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}

		if lesson.FilePath != "" {
			pending = append(pending, lesson.FilePath)
		}

		res := tx.Unscoped().Delete(&models.Lesson{}, lesson.ID)
		if res.Error != nil {
			return res.Error
		}
		// Rows-affected is the race signal: a concurrent deletion that
		// committed first leaves nothing to delete here.
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		LogActivity(tx, classroom.ID, actor.ID, ActivityLessonDeleted,
			fmt.Sprintf("lesson %q deleted", lesson.Title),
			map[string]interface{}{"lesson_id": lesson.ID, "submissions": len(submissions)})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		return &DeletionError{Cause: err}
	}

	removeFiles(files, pending)
	return nil
}

// DeleteClassroom is the same protocol one level up: lessons with their
// submissions, enrollments and the classroom's audit trail all go in one
// transaction, then the classroom row itself.
func DeleteClassroom(db *gorm.DB, files storage.FileStore, actor policy.Actor, classroomID uint) error {
	var pending []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var classroom models.Classroom
		if err := tx.First(&classroom, classroomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if d := policy.Decide(actor, policy.ActionDeleteClassroom, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
			log.Printf("denied delete_classroom: user=%d role=%s classroom=%d reason=%s",
				actor.ID, actor.Role, classroom.ID, d.Reason)
			return ErrForbidden
		}

		var lessons []models.Lesson
		if err := tx.Where("classroom_id = ?", classroom.ID).Find(&lessons).Error; err != nil {
			return err
		}

		lessonIDs := make([]uint, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
			if l.FilePath != "" {
				pending = append(pending, l.FilePath)
			}
		}

		if len(lessonIDs) > 0 {
			var submissions []models.Submission
			if err := tx.Where("lesson_id IN ?", lessonIDs).Find(&submissions).Error; err != nil {
				return err
			}
			for _, s := range submissions {
				if s.FilePath != "" {
					pending = append(pending, s.FilePath)
				}
			}

			if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(&models.Submission{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("classroom_id = ?", classroom.ID).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("classroom_id = ?", classroom.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		// The audit trail anchors on the classroom, so it goes with it. No
		// fresh entry is written: it would dangle on a deleted classroom id.
		if database.Capabilities.ActivityLog {
			if err := tx.Unscoped().Where("classroom_id = ?", classroom.ID).Delete(&models.ActivityLog{}).Error; err != nil {
				return err
			}
		}

		res := tx.Unscoped().Delete(&models.Classroom{}, classroom.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		return &DeletionError{Cause: err}
	}

	removeFiles(files, pending)
	return nil
}

// removeFiles performs the scheduled post-commit removals. Failures are
// orphan warnings, not user-visible errors: the relational delete already
// committed.
func removeFiles(files storage.FileStore, paths []string) {
	for _, p := range paths {
		if err := files.Remove(p); err != nil {
			log.Printf("orphaned file %s: %v", p, err)
		}
	}
}
