package middleware

import (
	"classboard/database"
	"classboard/models"
	"classboard/policy"

	"github.com/gofiber/fiber/v2"
)

// LoadActor re-fetches the authenticated user row and stashes the policy
// actor in the request context. Role and ownership can change between
// requests, so the actor is always built from fresh database state, never
// from token claims alone.
func LoadActor(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	c.Locals("actor", policy.Actor{ID: user.ID, Role: user.Role})
	c.Locals("currentUser", &user)

	return c.Next()
}

// Actor pulls the policy actor set by LoadActor.
func Actor(c *fiber.Ctx) policy.Actor {
	actor, _ := c.Locals("actor").(policy.Actor)
	return actor
}

// CurrentUser pulls the user row set by LoadActor.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("currentUser").(*models.User)
	return user
}
