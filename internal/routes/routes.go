package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	modules []apps.Module,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(60))

	api.Get("/health", healthHandler.Check)

	v1 := api.Group("/v1")
	jwt := middleware.JWTProtected(cfg.JWTSecret)

	// Auth: public endpoints get a stricter 10 req/min per IP
	auth := v1.Group("/auth")
	authLimit := rateLimit(10)
	auth.Post("/register", authLimit, authHandler.Register)
	auth.Post("/login", authLimit, authHandler.Login)
	auth.Post("/google", authLimit, authHandler.GoogleSignIn)
	auth.Post("/forgot-password", authLimit, authHandler.ForgotPassword)
	auth.Post("/reset-password", authLimit, authHandler.ResetPassword)

	// Logout only clears the cookie, so it needs no valid token
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/logout", authHandler.Logout)

	auth.Get("/profile", jwt, authHandler.Profile)
	auth.Put("/profile", jwt, authHandler.UpdateProfile)

	// Admin (protected + admin role from the DB)
	admin := v1.Group("/admin", jwt, middleware.AdminRequired(db))
	admin.Get("/system-logs", adminHandler.SystemLogs)

	// Feature modules attach jwt to the routes that need a caller
	for _, m := range modules {
		m.RegisterRoutes(v1, jwt)
	}
}

func rateLimit(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
