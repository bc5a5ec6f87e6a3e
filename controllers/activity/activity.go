package activityController

import (
	"classboard/database"
	"classboard/middleware"
	"classboard/models"
	"classboard/policy"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// GetClassroomActivity lists the classroom's audit trail for its owner or an
// admin, optionally filtered to today/week/month.
func GetClassroomActivity(c *fiber.Ctx) error {
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

	if !database.Capabilities.ActivityLog {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Activity fetched successfully!", []models.ActivityLog{})
	}

	query := db.Where("classroom_id = ?", classroom.ID)

	switch c.Query("period") {
	case "today":
		query = query.Where("created_at >= ?", now.BeginningOfDay())
	case "week":
		query = query.Where("created_at >= ?", now.BeginningOfWeek())
	case "month":
		query = query.Where("created_at >= ?", now.BeginningOfMonth())
	}

	var activities []models.ActivityLog
	if err := query.Order("created_at desc").Limit(100).Find(&activities).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch activity!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Activity fetched successfully!", activities)
}
