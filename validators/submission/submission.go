package submissionValidator

import (
	"classboard/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SubmitWork validates a submission for lesson :id. The body may arrive as
// JSON or as multipart form fields when a file is attached.
func SubmitWork() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(struct {
			Content string `json:"content" form:"content"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Content = strings.TrimSpace(reqData.Content)
		if reqData.Content == "" {
			errors["content"] = "Content is required!"
		} else if len(reqData.Content) > 20000 {
			errors["content"] = "Content must not exceed 20000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmission", reqData)
		c.Locals("lessonID", uint(id))
		return c.Next()
	}
}

// GradeSubmission validates a grading request for submission :id.
func GradeSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid submission ID!", nil)
		}

		reqData := new(struct {
			Grade    *float64 `json:"grade"`
			Feedback string   `json:"feedback"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Grade == nil {
			errors["grade"] = "Grade is required!"
		} else if *reqData.Grade < 0 || *reqData.Grade > 100 {
			errors["grade"] = "Grade must be between 0 and 100!"
		}

		reqData.Feedback = strings.TrimSpace(reqData.Feedback)
		if len(reqData.Feedback) > 5000 {
			errors["feedback"] = "Feedback must not exceed 5000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		validated := &struct {
			Grade    float64 `json:"grade"`
			Feedback string  `json:"feedback"`
		}{Grade: *reqData.Grade, Feedback: reqData.Feedback}

		c.Locals("validatedGrade", validated)
		c.Locals("submissionID", uint(id))
		return c.Next()
	}
}
