package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

// RoleRequired gates a route subtree to one role. The token's role claim is
// checked first; the profile row is the authority when the claim disagrees,
// so a role change takes effect without waiting for token expiry.
func RoleRequired(db *gorm.DB, role roles.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if roles.FromContext(c) == role {
			return c.Next()
		}

		sub, err := roles.SubjectID(c)
		if err == nil {
			var profile models.Profile
			if err := db.First(&profile, "id = ?", sub).Error; err == nil {
				if roles.Parse(profile.Role) == role {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Access restricted to " + role.String() + " accounts",
		})
	}
}
