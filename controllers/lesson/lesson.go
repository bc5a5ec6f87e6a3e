package lessonController

import (
	"classboard/database"
	"classboard/middleware"
	"classboard/models"
	"classboard/policy"
	"classboard/services"
	"classboard/storage"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// CreateLesson adds a lesson to a classroom the teacher owns. An optional
// file can be attached as multipart field "file".
func CreateLesson(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionCreateLesson, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied create_lesson: user=%d role=%s classroom=%d reason=%s", actor.ID, actor.Role, classroom.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		Content     string `json:"content" form:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := models.Lesson{
		ClassroomID: classroom.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
	}
	if database.Capabilities.LessonContent {
		lesson.Content = reqData.Content
	}

	// Optional attachment
	if database.Capabilities.LessonFilePath {
		if file, err := c.FormFile("file"); err == nil && file != nil {
			path, err := storage.Files.Save(file)
			if err != nil {
				log.Printf("Error storing lesson file: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
			}
			lesson.FilePath = path
		}
	}

	if err := db.Create(&lesson).Error; err != nil {
		log.Printf("Error creating lesson: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	services.LogActivity(db, classroom.ID, actor.ID, services.ActivityLessonCreated,
		"lesson \""+lesson.Title+"\" created", map[string]interface{}{"lesson_id": lesson.ID})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// ListLessons lists a classroom's lessons for its owner, an admin, or an
// enrolled student.
func ListLessons(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	target := policy.Target{
		TeacherID: classroom.TeacherID,
		Enrolled:  services.IsEnrolled(db, actor.ID, classroom.ID),
	}
	if d := policy.Decide(actor, policy.ActionViewLesson, target); !d.Allowed {
		log.Printf("denied view_lesson: user=%d role=%s classroom=%d reason=%s", actor.ID, actor.Role, classroom.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this classroom!", nil)
	}

	var lessons []models.Lesson
	if err := db.Where("classroom_id = ?", classroom.ID).Order("created_at asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

// GetLesson fetches a single lesson, enrollment-gated for students.
func GetLesson(c *fiber.Ctx) error {
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
	if d := policy.Decide(actor, policy.ActionViewLesson, target); !d.Allowed {
		log.Printf("denied view_lesson: user=%d role=%s lesson=%d reason=%s", actor.ID, actor.Role, lesson.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this classroom!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

// UpdateLesson updates a lesson through one parameterized statement whose
// column set comes from the schema capabilities resolved at startup.
func UpdateLesson(c *fiber.Ctx) error {
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

	if d := policy.Decide(actor, policy.ActionEditLesson, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied edit_lesson: user=%d role=%s lesson=%d reason=%s", actor.ID, actor.Role, lesson.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		Content     string `json:"content" form:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != "" {
		updates["title"] = reqData.Title
	}
	if reqData.Description != "" {
		updates["description"] = reqData.Description
	}
	if reqData.Content != "" && database.Capabilities.LessonContent {
		updates["content"] = reqData.Content
	}

	if database.Capabilities.LessonFilePath {
		if file, err := c.FormFile("file"); err == nil && file != nil {
			path, err := storage.Files.Save(file)
			if err != nil {
				log.Printf("Error storing lesson file: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
			}
			updates["file_path"] = path
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&lesson).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson runs the cascading deletion protocol for one lesson.
func DeleteLesson(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	lessonID := c.Locals("lessonID").(uint)

	err := services.DeleteLesson(database.Database.Db, storage.Files, actor, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		case errors.Is(err, services.ErrForbidden):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
		default:
			log.Printf("Error deleting lesson %d: %v", lessonID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
