package listings

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type ListingsPlugin struct {
	service *ListingService
}

func New(service *ListingService) *ListingsPlugin {
	return &ListingsPlugin{service: service}
}

func (p *ListingsPlugin) ID() string { return "listings" }

func (p *ListingsPlugin) Models() []interface{} {
	return []interface{}{
		&models.Property{},
		&models.PropertyImage{},
	}
}

func (p *ListingsPlugin) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	handler := NewListingHandler(p.service)

	properties := router.Group("/properties")

	// Public browsing
	properties.Get("/", handler.List)
	properties.Get("/my-properties", auth, handler.MyListings)
	properties.Get("/:id", handler.Get)

	// Owner actions
	properties.Post("/", auth, handler.Create)
	properties.Put("/:id", auth, handler.Update)
	properties.Delete("/:id", auth, handler.Delete)
	properties.Post("/:id/images", auth, handler.AddImages)
	properties.Delete("/:id/images/:imageId", auth, handler.DeleteImage)
}
