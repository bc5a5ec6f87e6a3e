package classroomController

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

// CreateClassroom creates a classroom owned by the requesting teacher.
func CreateClassroom(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	if d := policy.Decide(actor, policy.ActionCreateClassroom, policy.Target{}); !d.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only teachers can create classrooms!", nil)
	}

	reqData, ok := c.Locals("validatedClassroom").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	classroom := models.Classroom{
		Name:        reqData.Name,
		Description: reqData.Description,
		TeacherID:   actor.ID,
	}

	if err := db.Create(&classroom).Error; err != nil {
		log.Printf("Error creating classroom: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create classroom!", nil)
	}

	// First edit-capable observation: hand the new classroom its code.
	if err := services.EnsureEnrollmentCode(db, &classroom); err != nil {
		log.Printf("Error provisioning enrollment code for classroom %d: %v", classroom.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Classroom created successfully!", classroom)
}

// GetMyClassrooms lists classrooms the requester owns (teacher) or is
// enrolled in (student).
func GetMyClassrooms(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	db := database.Database.Db

	var classrooms []models.Classroom

	switch actor.Role {
	case policy.RoleStudent:
		if err := db.
			Joins("JOIN enrollments ON enrollments.classroom_id = classrooms.id").
			Where("enrollments.student_id = ?", actor.ID).
			Find(&classrooms).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classrooms!", nil)
		}
		// The code is the join credential; students never see it.
		for i := range classrooms {
			classrooms[i].EnrollmentCode = nil
		}
	case policy.RoleAdmin:
		if err := db.Find(&classrooms).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classrooms!", nil)
		}
	default:
		if err := db.Where("teacher_id = ?", actor.ID).Find(&classrooms).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch classrooms!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classrooms fetched successfully!", classrooms)
}

// GetClassroom fetches a single classroom.
func GetClassroom(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	owner := policy.Decide(actor, policy.ActionEditClassroom, policy.Target{TeacherID: classroom.TeacherID})
	if !owner.Allowed {
		classroom.EnrollmentCode = nil
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classroom fetched successfully!", classroom)
}

// UpdateClassroom updates name/description for the owning teacher or admin.
func UpdateClassroom(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionEditClassroom, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied edit_classroom: user=%d role=%s classroom=%d reason=%s", actor.ID, actor.Role, classroom.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	reqData, ok := c.Locals("validatedClassroomUpdate").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Name != "" {
		classroom.Name = reqData.Name
	}
	if reqData.Description != "" {
		classroom.Description = reqData.Description
	}

	if err := db.Save(&classroom).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update classroom!", nil)
	}

	// Lazy provisioning: an edit that sees no code gives out one.
	if err := services.EnsureEnrollmentCode(db, &classroom); err != nil {
		log.Printf("Error provisioning enrollment code for classroom %d: %v", classroom.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classroom updated successfully!", classroom)
}

// RegenerateCode replaces the enrollment code. Owner or admin only.
func RegenerateCode(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionEditClassroom, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		log.Printf("denied edit_classroom: user=%d role=%s classroom=%d reason=%s", actor.ID, actor.Role, classroom.ID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	if err := services.RegenerateEnrollmentCode(db, &classroom); err != nil {
		if errors.Is(err, services.ErrCodeGenerationExhausted) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Could not generate a unique code, try again!", nil)
		}
		log.Printf("Error regenerating enrollment code for classroom %d: %v", classroom.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to regenerate code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment code regenerated successfully!", fiber.Map{
		"enrollment_code": classroom.EnrollmentCode,
	})
}

// GetRoster lists the students enrolled in a classroom. Owner or admin only.
func GetRoster(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	db := database.Database.Db

	var classroom models.Classroom
	if err := db.First(&classroom, classroomID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
	}

	if d := policy.Decide(actor, policy.ActionEditClassroom, policy.Target{TeacherID: classroom.TeacherID}); !d.Allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
	}

	var roster []struct {
		UserID     uint   `json:"user_id"`
		Name       string `json:"name"`
		Username   string `json:"username"`
		EnrolledAt string `json:"enrolled_at"`
	}
	if err := db.Model(&models.Enrollment{}).
		Select("users.id as user_id, users.name, users.username, enrollments.enrolled_at").
		Joins("JOIN users ON users.id = enrollments.student_id").
		Where("enrollments.classroom_id = ?", classroom.ID).
		Scan(&roster).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch roster!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roster fetched successfully!", roster)
}

// DeleteClassroom tears the classroom down: lessons, submissions,
// enrollments and audit trail go in one transaction.
func DeleteClassroom(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	classroomID := c.Locals("classroomID").(uint)

	err := services.DeleteClassroom(database.Database.Db, storage.Files, actor, classroomID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
		case errors.Is(err, services.ErrForbidden):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this classroom!", nil)
		default:
			log.Printf("Error deleting classroom %d: %v", classroomID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete classroom!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Classroom deleted successfully!", nil)
}
