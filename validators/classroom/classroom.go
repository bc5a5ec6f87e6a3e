package classroomValidator

import (
	"classboard/middleware"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClassroomID validates the :id URL parameter and stores it as uint.
func ClassroomID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Classroom ID is required in the URL!", nil)
		}

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid classroom ID!", nil)
		}

		c.Locals("classroomID", uint(id))
		return c.Next()
	}
}

// CreateClassroom validates the classroom creation body.
func CreateClassroom() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Normalize and sanitize inputs
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Description = strings.TrimSpace(reqData.Description)

		// Validate Name
		if reqData.Name == "" {
			errors["name"] = "Name is required!"
		} else {
			if len(reqData.Name) < 3 {
				errors["name"] = "Name must be at least 3 characters long!"
			}
			if len(reqData.Name) > 100 {
				errors["name"] = "Name must not exceed 100 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Name); matched {
				errors["name"] = "Name contains invalid characters (e.g., <, >, {, })!"
			}
		}

		// Validate Description (optional field)
		if reqData.Description != "" && len(reqData.Description) > 1000 {
			errors["description"] = "Description must not exceed 1000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedClassroom", reqData)
		return c.Next()
	}
}

// UpdateClassroom validates the classroom update body plus the :id param.
func UpdateClassroom() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid classroom ID!", nil)
		}

		reqData := new(struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Name != "" {
			if len(reqData.Name) < 3 {
				errors["name"] = "Name must be at least 3 characters long!"
			}
			if len(reqData.Name) > 100 {
				errors["name"] = "Name must not exceed 100 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Name); matched {
				errors["name"] = "Name contains invalid characters (e.g., <, >, {, })!"
			}
		}
		if reqData.Description != "" && len(reqData.Description) > 1000 {
			errors["description"] = "Description must not exceed 1000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedClassroomUpdate", reqData)
		c.Locals("classroomID", uint(id))
		return c.Next()
	}
}
