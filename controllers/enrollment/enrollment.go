package enrollmentController

import (
	"classboard/database"
	"classboard/middleware"
	"classboard/models"
	"classboard/policy"
	"classboard/services"
	"classboard/utils"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// EnrollInClassroom redeems an enrollment code for the requesting student.
func EnrollInClassroom(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	user := middleware.CurrentUser(c)
	classroomID := c.Locals("classroomID").(uint)

	if d := policy.Decide(actor, policy.ActionEnroll, policy.Target{}); !d.Allowed {
		log.Printf("denied enroll: user=%d role=%s classroom=%d reason=%s", actor.ID, actor.Role, classroomID, d.Reason)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only students can enroll!", nil)
	}

	reqData, ok := c.Locals("validatedEnroll").(*struct {
		Code string `json:"code"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	enrollment, err := services.Enroll(db, actor.ID, classroomID, reqData.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Classroom not found!", nil)
		case errors.Is(err, services.ErrInvalidEnrollmentCode):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid enrollment code!", nil)
		case errors.Is(err, services.ErrAlreadyEnrolled):
			// Informational, not a failure: the student is in either way.
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled in this classroom!", enrollment)
		default:
			log.Printf("Error enrolling user %d in classroom %d: %v", actor.ID, classroomID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
		}
	}

	// Best-effort confirmation mail
	go func(email, name string, classroomID uint) {
		var classroom models.Classroom
		if err := database.Database.Db.First(&classroom, classroomID).Error; err == nil {
			_ = utils.SendEnrollmentEmail(email, name, classroom.Name)
		}
	}(user.Email, user.Name, classroomID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// GetMyEnrollments lists the requesting student's enrollments.
func GetMyEnrollments(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	db := database.Database.Db

	var enrollments []models.Enrollment
	if err := db.Where("student_id = ?", actor.ID).
		Preload("Classroom").
		Order("enrolled_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	// Never leak join credentials to students.
	for i := range enrollments {
		enrollments[i].Classroom.EnrollmentCode = nil
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}
