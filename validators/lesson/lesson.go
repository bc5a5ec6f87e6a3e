package lessonValidator

import (
	"classboard/middleware"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LessonID validates the :id URL parameter and stores it as uint.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID is required in the URL!", nil)
		}

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		c.Locals("lessonID", uint(id))
		return c.Next()
	}
}

// CreateLesson validates a lesson creation request. The body may arrive as
// JSON or as multipart form fields when a file is attached.
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		classroomIDStr := strings.TrimSpace(c.Params("id"))
		classroomID, err := strconv.ParseUint(classroomIDStr, 10, 32)
		if err != nil || classroomID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid classroom ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title" form:"title"`
			Description string `json:"description" form:"description"`
			Content     string `json:"content" form:"content"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Normalize and sanitize inputs
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		// Validate Title
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else {
			if len(reqData.Title) < 3 {
				errors["title"] = "Title must be at least 3 characters long!"
			}
			if len(reqData.Title) > 100 {
				errors["title"] = "Title must not exceed 100 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Title); matched {
				errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
			}
		}

		// Validate Description (optional field)
		if reqData.Description != "" && len(reqData.Description) > 1000 {
			errors["description"] = "Description must not exceed 1000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		c.Locals("classroomID", uint(classroomID))
		return c.Next()
	}
}

// UpdateLesson validates a lesson update request.
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title" form:"title"`
			Description string `json:"description" form:"description"`
			Content     string `json:"content" form:"content"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Title != "" {
			if len(reqData.Title) < 3 {
				errors["title"] = "Title must be at least 3 characters long!"
			}
			if len(reqData.Title) > 100 {
				errors["title"] = "Title must not exceed 100 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Title); matched {
				errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
			}
		}
		if reqData.Description != "" && len(reqData.Description) > 1000 {
			errors["description"] = "Description must not exceed 1000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLessonUpdate", reqData)
		c.Locals("lessonID", uint(id))
		return c.Next()
	}
}
