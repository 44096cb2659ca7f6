package middleware

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired checks the caller's role in the users table. It must run
// after JWTProtected.
func AdminRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Access denied. Authentication required",
			})
		}

		var user models.User
		err = db.WithContext(c.UserContext()).Select("id", "role").First(&user, "id = ?", userID).Error
		if err != nil || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Access denied. Admin privileges required",
			})
		}

		return c.Next()
	}
}
