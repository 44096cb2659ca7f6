package favorites

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FavoritesPlugin struct {
	db *gorm.DB
}

func New(db *gorm.DB) *FavoritesPlugin {
	return &FavoritesPlugin{db: db}
}

func (p *FavoritesPlugin) ID() string { return "favorites" }

func (p *FavoritesPlugin) Models() []interface{} {
	return []interface{}{&models.Favorite{}}
}

func (p *FavoritesPlugin) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	handler := NewFavoriteHandler(NewFavoriteService(p.db))

	favorites := router.Group("/favorites", auth)
	favorites.Post("/toggle", handler.Toggle)
	favorites.Get("/", handler.List)
	favorites.Get("/check/:property_id", handler.Check)
}
