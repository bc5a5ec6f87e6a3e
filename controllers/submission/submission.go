package submissionController

import (
	"classboard/database"
	"classboard/middleware"
	"classboard/models"
	"classboard/policy"
	"classboard/services"
	"classboard/storage"
	"classboard/utils"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubmitWork hands in (or replaces) the student's submission for a lesson.
// Resubmission overwrites the previous one and resets any grade, so "your
// submission" is always the single latest one.
func SubmitWork(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	lessonID := c.Locals("lessonID").(uint)

	db := database.Database.Db

	var lesson models.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var classroom models.Classroom
	if err := db.First(&classroom, lesson.ClassroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	target := policy.Target{
		TeacherID: classroom.TeacherID,
		Enrolled:  services.IsEnrolled(db, actor.ID, classroom.ID),
	}
	if d := policy.Decide(actor, policy.ActionSubmit, target); !d.Allowed {
		log.Printf("denied submit: user=%d role=%s lesson=%d reason=%s", actor.ID, actor.Role, lesson.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this classroom!", nil)
	}

	reqData, ok := c.Locals("validatedSubmission").(*struct {
		Content string `json:"content" form:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	filePath := ""
	if database.Capabilities.SubmissionFilePath {
		if file, err := c.FormFile("file"); err == nil && file != nil {
			path, err := storage.Files.Save(file)
			if err != nil {
				log.Printf("Error storing submission file: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
			}
			filePath = path
		}
	}

	var submission models.Submission
	err := db.Where("lesson_id = ? AND student_id = ?", lesson.ID, actor.ID).First(&submission).Error
	switch {
	case err == nil:
		// Replace the earlier hand-in; the stale grade goes with it.
		oldFile := submission.FilePath
		submission.Content = reqData.Content
		if filePath != "" {
			submission.FilePath = filePath
		}
		submission.Grade = nil
		submission.Feedback = nil
		submission.SubmittedAt = time.Now()
		if err := db.Save(&submission).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit!", nil)
		}
		if filePath != "" && oldFile != "" && oldFile != filePath {
			if err := storage.Files.Remove(oldFile); err != nil {
				log.Printf("orphaned file %s: %v", oldFile, err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		submission = models.Submission{
			LessonID:    lesson.ID,
			StudentID:   actor.ID,
			Content:     reqData.Content,
			FilePath:    filePath,
			SubmittedAt: time.Now(),
		}
		if err := db.Create(&submission).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit!", nil)
		}
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Work submitted successfully!", submission)
}

// GetMySubmission returns the requesting student's submission for a lesson.
func GetMySubmission(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	lessonID := c.Locals("lessonID").(uint)

	db := database.Database.Db

	var submission models.Submission
	if err := db.Where("lesson_id = ? AND student_id = ?", lessonID, actor.ID).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No submission found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", submission)
}

// ListSubmissions lists all submissions for a lesson. Owning teacher or
// admin only.
func ListSubmissions(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	lessonID := c.Locals("lessonID").(uint)

	db := database.Database.Db

	var lesson models.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var classroom models.Classroom
	if err := db.First(&classroom, lesson.ClassroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionGrade, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied grade: user=%d role=%s lesson=%d reason=%s", actor.ID, actor.Role, lesson.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	var submissions []models.Submission
	if err := db.Where("lesson_id = ?", lesson.ID).Order("submitted_at desc").Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}

// GradeSubmission sets grade and feedback on a submission. Owning teacher or
// admin only.
func GradeSubmission(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	submissionID := c.Locals("submissionID").(uint)

	db := database.Database.Db

	var submission models.Submission
	if err := db.First(&submission, submissionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	var lesson models.Lesson
	if err := db.First(&lesson, submission.LessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var classroom models.Classroom
	if err := db.First(&classroom, lesson.ClassroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionGrade, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied grade: user=%d role=%s submission=%d reason=%s", actor.ID, actor.Role, submission.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	reqData, ok := c.Locals("validatedGrade").(*struct {
		Grade    float64 `json:"grade"`
		Feedback string  `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	submission.Grade = &reqData.Grade
	if reqData.Feedback != "" {
		submission.Feedback = &reqData.Feedback
	}

	if err := db.Save(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	services.LogActivity(db, classroom.ID, actor.ID, services.ActivitySubmissionGraded,
		"submission graded for lesson \""+lesson.Title+"\"",
		map[string]interface{}{"submission_id": submission.ID, "lesson_id": lesson.ID})

	// Best-effort grade mail
	go func(studentID uint, lessonTitle string, grade float64) {
		var student models.User
		if err := database.Database.Db.First(&student, studentID).Error; err == nil && student.Email != "" {
			_ = utils.SendGradeEmail(student.Email, student.Name, lessonTitle, grade)
		}
	}(submission.StudentID, lesson.Title, reqData.Grade)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", submission)
}
