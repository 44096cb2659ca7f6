package apps

import (
	"github.com/gofiber/fiber/v2"
)

// Module is a feature area that owns its tables and HTTP routes.
type Module interface {
	// ID returns the module name used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module's routes on the /api/v1 group. auth
	// is the JWT middleware; modules attach it to the routes that need a caller.
	RegisterRoutes(router fiber.Router, auth fiber.Handler)
}
