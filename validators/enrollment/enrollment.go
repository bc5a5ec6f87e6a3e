package enrollmentValidator

import (
	"classboard/middleware"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// codePattern matches what the generator produces. An empty code is allowed
// here so a store without code support can still accept the request; the
// enrollment protocol decides whether a code is required.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Enroll validates the enrollment request: classroom :id plus the code body.
func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid classroom ID!", nil)
		}

		reqData := new(struct {
			Code string `json:"code"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Codes are stored uppercase; comparison stays case-sensitive, so no
		// normalization beyond trimming.
		reqData.Code = strings.TrimSpace(reqData.Code)
		if reqData.Code != "" && !codePattern.MatchString(reqData.Code) {
			errors["code"] = "Code must be 8 uppercase letters or digits!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEnroll", reqData)
		c.Locals("classroomID", uint(id))
		return c.Next()
	}
}
