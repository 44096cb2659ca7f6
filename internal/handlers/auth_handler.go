package handlers

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService  *services.AuthService
	tokenTTL     time.Duration
	cookieSecure bool
}

func NewAuthHandler(authService *services.AuthService, tokenTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, cookieSecure: cookieSecure}
}

// Register accepts JSON or multipart form data with an optional avatar file.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	var avatar []byte
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if fh, err := c.FormFile("avatar"); err == nil {
			data, err := ReadImage(fh)
			if err != nil {
				return err
			}
			avatar = data
		}
	}

	session, err := h.authService.Register(c.UserContext(), &req, avatar)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session.Token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    toUserResponse(session.User),
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	session, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session.Token)
	return c.JSON(fiber.Map{
		"user":    toUserResponse(session.User),
		"message": "Logged in successfully",
	})
}

func (h *AuthHandler) GoogleSignIn(c *fiber.Ctx) error {
	var req dto.GoogleSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	session, err := h.authService.GoogleSignIn(c.UserContext(), req.IDToken)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session.Token)
	return c.JSON(fiber.Map{
		"user":    toUserResponse(session.User),
		"message": "Google authentication successful",
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.Profile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user), "message": "Profile updated successfully"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password has been reset successfully"})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		MaxAge:   int(h.tokenTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func toUserResponse(u *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		AvatarURL:    u.AvatarURL,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		IsGoogleUser: u.GoogleID != nil,
	}
	if u.Username != nil {
		resp.Username = *u.Username
	}
	return resp
}
