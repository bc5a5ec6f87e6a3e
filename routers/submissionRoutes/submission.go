package submissionRoutes

import (
	submissionControllers "classboard/controllers/submission"
	"classboard/middleware"
	submissionValidators "classboard/validators/submission"

	"github.com/gofiber/fiber/v2"
)

// SetupSubmissionRoutes sets up grading routes
func SetupSubmissionRoutes(app *fiber.App) {
	submissionGroup := app.Group("/submission", middleware.JWTMiddleware, middleware.LoadActor)

	submissionGroup.Post("/:id/grade", submissionValidators.GradeSubmission(), submissionControllers.GradeSubmission)
}
