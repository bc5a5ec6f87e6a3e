package classroomRoutes

import (
	activityControllers "classboard/controllers/activity"
	classroomControllers "classboard/controllers/classroom"
	enrollmentControllers "classboard/controllers/enrollment"
	lessonControllers "classboard/controllers/lesson"
	"classboard/middleware"
	classroomValidators "classboard/validators/classroom"
	enrollmentValidators "classboard/validators/enrollment"
	lessonValidators "classboard/validators/lesson"

	"github.com/gofiber/fiber/v2"
)

// SetupClassroomRoutes sets up all classroom management routes
func SetupClassroomRoutes(app *fiber.App) {
	classroomGroup := app.Group("/classroom", middleware.JWTMiddleware, middleware.LoadActor)

	// Classroom CRUD
	classroomGroup.Post("/create", classroomValidators.CreateClassroom(), classroomControllers.CreateClassroom)
	classroomGroup.Get("/list", classroomControllers.GetMyClassrooms)
	classroomGroup.Get("/:id", classroomValidators.ClassroomID(), classroomControllers.GetClassroom)
	classroomGroup.Put("/:id", classroomValidators.UpdateClassroom(), classroomControllers.UpdateClassroom)
	classroomGroup.Delete("/:id", classroomValidators.ClassroomID(), classroomControllers.DeleteClassroom)

	// Enrollment code management
	classroomGroup.Post("/:id/regenerate-code", classroomValidators.ClassroomID(), classroomControllers.RegenerateCode)

	// Enrollment
	classroomGroup.Post("/:id/enroll", enrollmentValidators.Enroll(), enrollmentControllers.EnrollInClassroom)
	classroomGroup.Get("/:id/roster", classroomValidators.ClassroomID(), classroomControllers.GetRoster)

	// Lessons within a classroom
	classroomGroup.Post("/:id/lesson", lessonValidators.CreateLesson(), lessonControllers.CreateLesson)
	classroomGroup.Get("/:id/lessons", classroomValidators.ClassroomID(), lessonControllers.ListLessons)

	// Audit trail
	classroomGroup.Get("/:id/activity", classroomValidators.ClassroomID(), activityControllers.GetClassroomActivity)

	// Student's own enrollments
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.LoadActor)
	userGroup.Get("/enrollments", enrollmentControllers.GetMyEnrollments)
}
