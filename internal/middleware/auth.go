package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the HTTP-only cookie carrying the session token.
const TokenCookie = "token"

// JWTProtected accepts the session token from the auth cookie or a Bearer
// header. A missing token is 401; a bad or expired one is 403.
func JWTProtected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		TokenLookup: "cookie:" + TokenCookie + ",header:Authorization",
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error:   true,
					Message: "Unauthorized. No token provided",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Invalid or expired token",
			})
		},
	})
}
