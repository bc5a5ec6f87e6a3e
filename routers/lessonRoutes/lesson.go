package lessonRoutes

import (
	lessonControllers "classboard/controllers/lesson"
	submissionControllers "classboard/controllers/submission"
	"classboard/middleware"
	lessonValidators "classboard/validators/lesson"
	submissionValidators "classboard/validators/submission"

	"github.com/gofiber/fiber/v2"
)

// SetupLessonRoutes sets up lesson viewing, editing and submission routes
func SetupLessonRoutes(app *fiber.App) {
	lessonGroup := app.Group("/lesson", middleware.JWTMiddleware, middleware.LoadActor)

	lessonGroup.Get("/:id", lessonValidators.LessonID(), lessonControllers.GetLesson)
	lessonGroup.Put("/:id", lessonValidators.UpdateLesson(), lessonControllers.UpdateLesson)
	lessonGroup.Delete("/:id", lessonValidators.LessonID(), lessonControllers.DeleteLesson)

	// Submissions on a lesson
	lessonGroup.Post("/:id/submit", submissionValidators.SubmitWork(), submissionControllers.SubmitWork)
	lessonGroup.Get("/:id/submission", lessonValidators.LessonID(), submissionControllers.GetMySubmission)
	lessonGroup.Get("/:id/submissions", lessonValidators.LessonID(), submissionControllers.ListSubmissions)
}
